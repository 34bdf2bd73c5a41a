package classify

import (
	"fmt"
	"math"
)

// metricScorer implements sign(bias) * log_|bias|(metric + offset). The
// log base comes from the bias magnitude: values near one flatten the
// preference, larger magnitudes sharpen it, and a negative bias inverts
// the direction entirely.
type metricScorer struct {
	name   string
	base   float64
	offset float64
	invert bool
	metric func(e *Entry) float64
}

func newMetricScorer(name string, bias, offset float64, metric func(e *Entry) float64) (*metricScorer, error) {
	if math.Abs(bias) <= 1 {
		return nil, fmt.Errorf("%s bias magnitude must exceed 1.0, got %v", name, bias)
	}
	return &metricScorer{
		name:   name,
		base:   math.Abs(bias),
		offset: offset,
		invert: bias < 0,
		metric: metric,
	}, nil
}

func (m *metricScorer) Name() string { return m.name }

func (m *metricScorer) Score(e *Entry) float64 {
	v := m.metric(e) + m.offset
	if v < 1 {
		// The offset is expected to lift the domain well above zero; clamp
		// so a pathological metric still scores finite.
		v = 1
	}
	s := math.Log(v) / math.Log(m.base)
	if m.invert {
		return -s
	}
	return s
}

// NewFileSize scores by file size in bytes. Positive bias prefers larger
// files.
func NewFileSize(bias, offset float64) (Classifier, error) {
	return newMetricScorer("file_size", bias, offset, func(e *Entry) float64 {
		return float64(e.Size)
	})
}

// NewDirSize scores by the number of candidate files sharing the entry's
// directory. Positive bias prefers denser directories.
func NewDirSize(bias, offset float64) (Classifier, error) {
	return newMetricScorer("dir_size", bias, offset, func(e *Entry) float64 {
		return float64(e.DirCount)
	})
}

// NewFileAge scores by file age in seconds. Positive bias prefers older
// files.
func NewFileAge(bias, offset float64) (Classifier, error) {
	return newMetricScorer("file_age", bias, offset, func(e *Entry) float64 {
		return e.Age.Seconds()
	})
}
