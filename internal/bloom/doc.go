// Package bloom provides the probabilistic membership filter used to gate
// feature lookups.
//
// A Filter is sized from an expected item count and a target
// false-positive rate, answers only "possibly present" or "definitely
// absent", and never returns a false negative for an inserted item. It is
// populated once during bootstrap and treated as read-only afterwards;
// MayContain is safe for concurrent readers once writes stop.
package bloom
