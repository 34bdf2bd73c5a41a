// Package report renders scoring results for human and machine readers.
//
// A report row carries the entry path, each enabled classifier's raw and
// normalized score, the combined score, and the classification state.
// Renderers: a rounded table for terminals and JSON lines for pipelines.
// Rows can be aggregated per directory (mean combined score, file count).
package report
