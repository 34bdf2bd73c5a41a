package classify

import (
	"time"

	"classicine/internal/ngram"
)

// State tracks an entry's classification lifecycle. The transition away
// from Unclassified is one-way.
type State int

const (
	Unclassified State = iota
	Positive
	Negative
)

func (s State) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unclassified"
	}
}

// Entry is one candidate file with everything the classifiers need:
// file-system metrics, the extracted feature set, and per-classifier score
// slots filled in by the Ranker.
type Entry struct {
	Path     string
	Norm     string
	Size     int64
	DirCount int
	Age      time.Duration

	// Seq is the discovery order, the deterministic ranking tie-break.
	Seq int

	Features []ngram.Feature

	Raw      []float64
	Norms    []float64
	Combined float64

	State State
}
