// Package session orchestrates one classification run end to end.
//
// Bootstrap builds everything the decision loop needs: scan the configured
// roots, train the tokenizer over the full path corpus (candidates plus
// already-decided paths), count n-gram document frequencies, build the
// retained-feature membership set, extract per-entry features, and seed the
// online model from the decision log. Already-decided paths never re-enter
// the candidate pool.
//
// The decision loop is strictly sequential: rank the pool, select a batch,
// present each candidate, and apply the outcome. A decision is persisted
// before the model learns from it and before the next candidate is
// presented; a persistence failure halts the session, while a player
// failure only skips the candidate.
package session
