// Package normalize canonicalizes file paths into the lowercase text form
// the tokenizer trains on.
//
// The transform is total and idempotent: lowercase everything, map
// punctuation runs to single spaces, keep path separators as distinguished
// single characters, and drop apostrophes entirely so contractions stay
// joined ("don't" -> "dont").
package normalize
