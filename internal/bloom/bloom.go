package bloom

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Filter is a classic bloom filter over uint64 keys. Probe positions
// derive from one 64-bit hash split in two (double hashing), so a single
// xxhash evaluation serves all k probes.
type Filter struct {
	bits   []uint64
	nbits  uint64
	probes int
}

// New sizes a filter for n expected items at target false-positive rate p.
// The bit count rounds up to a power of two so the odd probe stride is
// coprime with it and every probe sequence covers the full table.
// Degenerate arguments are clamped rather than rejected: the filter always
// has at least one word and one probe.
func New(n int, p float64) *Filter {
	if n < 1 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = 0.01
	}
	ln2 := math.Ln2
	m := uint64(math.Ceil(-float64(n) * math.Log(p) / (ln2 * ln2)))
	nbits := uint64(64)
	for nbits < m {
		nbits <<= 1
	}
	k := int(math.Round(float64(nbits) / float64(n) * ln2))
	if k < 1 {
		k = 1
	}
	return &Filter{
		bits:   make([]uint64, nbits/64),
		nbits:  nbits,
		probes: k,
	}
}

// Add inserts key. Not safe for concurrent use with other writers.
func (f *Filter) Add(key uint64) {
	h1, h2 := split(key)
	for i := 0; i < f.probes; i++ {
		bit := (h1 + uint64(i)*h2) & (f.nbits - 1)
		f.bits[bit/64] |= 1 << (bit % 64)
	}
}

// MayContain reports whether key is possibly present. A false return is
// definitive absence.
func (f *Filter) MayContain(key uint64) bool {
	h1, h2 := split(key)
	for i := 0; i < f.probes; i++ {
		bit := (h1 + uint64(i)*h2) & (f.nbits - 1)
		if f.bits[bit/64]&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

// Bits reports the filter size in bits.
func (f *Filter) Bits() uint64 {
	return f.nbits
}

// Probes reports the per-key probe count.
func (f *Filter) Probes() int {
	return f.probes
}

func split(key uint64) (uint64, uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	h := xxhash.Sum64(buf[:])
	h1 := h
	// An odd stride is coprime with the power-of-two bit count, so the
	// probe sequence never collapses onto a short cycle.
	h2 := (h>>33 | h<<31) | 1
	return h1, h2
}
