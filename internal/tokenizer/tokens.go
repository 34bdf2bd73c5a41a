package tokenizer

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Token identifies one vocabulary entry. Token zero is the unknown token.
type Token uint32

// Unknown stands in for any character the training corpus never saw.
const Unknown Token = 0

// Pair is an adjacent token pair, the unit of merging.
type Pair struct {
	A, B Token
}

func (p Pair) hash() uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.A))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.B))
	return xxhash.Sum64(buf[:])
}

// maskBits returns the single-bit 128-bit prefilter mask for the pair.
func (p Pair) maskBits() (hi, lo uint64) {
	bit := p.hash() % 128
	if bit < 64 {
		return 0, 1 << bit
	}
	return 1 << (bit - 64), 0
}

// Sequence is a tokenized string plus a 128-bit prefilter over its
// mergeable pairs. The prefilter answers "definitely absent" cheaply so
// merge application can skip sequences that cannot contain a pair.
type Sequence struct {
	ids            []Token
	maskHi, maskLo uint64
}

// Tokens returns the underlying token ids. Callers must not mutate it.
func (s *Sequence) Tokens() []Token {
	return s.ids
}

// Len reports the number of tokens in the sequence.
func (s *Sequence) Len() int {
	return len(s.ids)
}

// mayContain reports whether the sequence possibly contains the pair.
// False means definitely absent.
func (s *Sequence) mayContain(p Pair) bool {
	hi, lo := p.maskBits()
	return s.maskHi&hi == hi && s.maskLo&lo == lo
}

// forEachPair visits every adjacent pair whose tokens are both mergeable,
// that is, strictly above the last reserved token.
func (s *Sequence) forEachPair(lastReserved Token, fn func(Pair)) {
	for i := 0; i+1 < len(s.ids); i++ {
		a, b := s.ids[i], s.ids[i+1]
		if a > lastReserved && b > lastReserved {
			fn(Pair{A: a, B: b})
		}
	}
}

func (s *Sequence) recalcMask(lastReserved Token) {
	s.maskHi, s.maskLo = 0, 0
	s.forEachPair(lastReserved, func(p Pair) {
		hi, lo := p.maskBits()
		s.maskHi |= hi
		s.maskLo |= lo
	})
}

// replaceFrom rewrites src into s with every occurrence of pair collapsed
// to merged, recomputing the prefilter. It reports whether any occurrence
// was replaced. s and src must be distinct.
func (s *Sequence) replaceFrom(src *Sequence, pair Pair, merged Token, lastReserved Token) bool {
	s.ids = s.ids[:0]
	n := len(src.ids)
	for i := 0; i < n; {
		if src.ids[i] == pair.A && i+1 < n && src.ids[i+1] == pair.B {
			s.ids = append(s.ids, merged)
			i += 2
			continue
		}
		s.ids = append(s.ids, src.ids[i])
		i++
	}
	s.recalcMask(lastReserved)
	return len(s.ids) != n
}
