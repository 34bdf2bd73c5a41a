package ngram

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"

	"classicine/internal/bloom"
	"classicine/internal/tokenizer"
)

// Feature identifies one n-gram.
type Feature uint64

// FeatureOf hashes a token window into its feature id.
func FeatureOf(tokens []tokenizer.Token) Feature {
	var d xxhash.Digest
	d.Reset()
	var buf [4]byte
	for _, t := range tokens {
		binary.LittleEndian.PutUint32(buf[:], uint32(t))
		_, _ = d.Write(buf[:])
	}
	return Feature(d.Sum64())
}

// Extract returns the sorted, deduplicated features for every contiguous
// window of length 1..window in seq. When allowed is non-nil, only members
// of the set survive.
func Extract(seq *tokenizer.Sequence, window int, allowed *Set) []Feature {
	tokens := seq.Tokens()
	var out []Feature
	for n := 1; n <= window; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			f := FeatureOf(tokens[i : i+n])
			if allowed != nil && !allowed.Contains(f) {
				continue
			}
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Set is the retained-feature membership structure: a bloom filter gate in
// front of an exact map. Contains never reports a retained feature absent,
// and the exact lookup removes the filter's false positives. Built once,
// read-only afterwards.
type Set struct {
	filter *bloom.Filter
	exact  map[Feature]struct{}
}

// NewSet builds the membership structure for the given features with the
// filter sized at the target false-positive rate.
func NewSet(features []Feature, fpRate float64) *Set {
	s := &Set{
		filter: bloom.New(len(features), fpRate),
		exact:  make(map[Feature]struct{}, len(features)),
	}
	for _, f := range features {
		s.filter.Add(uint64(f))
		s.exact[f] = struct{}{}
	}
	return s
}

// Contains reports exact membership, consulting the filter first so misses
// stay cheap.
func (s *Set) Contains(f Feature) bool {
	if !s.filter.MayContain(uint64(f)) {
		return false
	}
	_, ok := s.exact[f]
	return ok
}

// MayContain exposes the filter-only answer: false is definitive absence,
// true means a full lookup is warranted.
func (s *Set) MayContain(f Feature) bool {
	return s.filter.MayContain(uint64(f))
}

// Len reports the number of retained features.
func (s *Set) Len() int {
	return len(s.exact)
}
