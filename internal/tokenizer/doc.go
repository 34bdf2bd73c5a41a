// Package tokenizer learns a sub-word vocabulary from a path corpus by
// iterative pair merging and encodes new paths with the learned merges.
//
// Training starts from single characters, repeatedly merges the most
// frequent adjacent token pair across the whole corpus, and stops once no
// pair reaches the minimum support threshold. Space and path-separator
// tokens are reserved and never merge, so learned tokens cannot straddle
// word or directory boundaries. Pair counting is sharded so the merge scan
// can run across a worker pool while totals stay exact.
//
// Ties between equally frequent pairs break deterministically: the pair
// whose left token string sorts first wins, then the right token string.
// Two training runs over the same corpus produce identical vocabularies
// and merge tables.
package tokenizer
