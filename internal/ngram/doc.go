// Package ngram turns token sequences into bounded-length n-gram features
// and maintains the corpus-wide feature statistics behind them.
//
// A Feature is a 64-bit hash of a contiguous token window. Corpus counting
// runs through a sharded counter so a worker pool can tally candidates
// concurrently while totals stay identical to a sequential count. Features
// surviving the minimum-support cut populate a Set, which layers a bloom
// filter over an exact map: the filter answers "definitely absent" without
// touching the map, and the map removes the filter's false positives.
package ngram
