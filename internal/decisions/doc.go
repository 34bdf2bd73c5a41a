// Package decisions persists classification decisions in SQLite and is
// the single source of truth for what has already been reviewed.
//
// The log is append-only: one record per decision, never mutated or
// deleted, loaded in full at session start to seed the online model and to
// exclude decided paths from the candidate pool. Rebase is the one bulk
// operation — rewriting every record's path prefix when a library moves —
// and changes nothing but the prefix.
//
// A sibling flock file serializes sessions on the same log; the schema
// carries a version the store refuses to open past.
package decisions
