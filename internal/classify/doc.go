// Package classify scores and ranks candidate entries.
//
// The classifier set is a fixed, closed group behind one Classifier
// contract: the online log-odds model driven by path n-gram features, plus
// three deterministic metric scorers over file size, directory density,
// and file age. The Ranker runs a full raw-scoring pass, min-max
// normalizes each classifier's column across the active pool, combines
// columns by arithmetic mean, and orders entries descending with the
// original discovery order as the tie-break so output is reproducible.
//
// Only the log-odds model learns. Its feature table mutates through a
// single path, Observe, which the session calls exactly once per decision.
package classify
