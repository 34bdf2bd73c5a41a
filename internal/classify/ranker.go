package classify

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Ranker drives the scoring pipeline over the active pool: a parallel raw
// scoring pass, the min/max bounds barrier, per-classifier min-max
// normalization (neutral 0.5 when a column is constant), mean combination,
// and the deterministic sort.
type Ranker struct {
	classifiers []Classifier
	workers     int
}

// NewRanker builds a ranker over the enabled classifier set.
func NewRanker(classifiers []Classifier, workers int) *Ranker {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ranker{classifiers: classifiers, workers: workers}
}

// Classifiers returns the enabled set in scoring order.
func (r *Ranker) Classifiers() []Classifier {
	return r.classifiers
}

// Rank scores, normalizes, combines, and sorts entries in place. Entries
// end up ordered best-first: descending combined score, discovery order on
// ties. An empty pool is a no-op, not an error.
func (r *Ranker) Rank(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	cols := len(r.classifiers)

	chunk := len(entries) / (r.workers * 4)
	if chunk < 16 {
		chunk = 16
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for start := 0; start < len(entries); start += chunk {
		end := start + chunk
		if end > len(entries) {
			end = len(entries)
		}
		part := entries[start:end]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, e := range part {
				if len(e.Raw) != cols {
					e.Raw = make([]float64, cols)
					e.Norms = make([]float64, cols)
				}
				for i, c := range r.classifiers {
					e.Raw[i] = c.Score(e)
				}
			}
			return nil
		})
	}
	// Every raw score must land before bounds can be taken.
	if err := g.Wait(); err != nil {
		return err
	}

	for col := 0; col < cols; col++ {
		min, max := math.Inf(1), math.Inf(-1)
		for _, e := range entries {
			if e.Raw[col] < min {
				min = e.Raw[col]
			}
			if e.Raw[col] > max {
				max = e.Raw[col]
			}
		}
		span := max - min
		for _, e := range entries {
			if span <= 0 {
				e.Norms[col] = 0.5
				continue
			}
			e.Norms[col] = (e.Raw[col] - min) / span
		}
	}

	for _, e := range entries {
		var sum float64
		for _, n := range e.Norms {
			sum += n
		}
		if cols > 0 {
			e.Combined = sum / float64(cols)
		} else {
			e.Combined = 0.5
		}
	}

	slices.SortFunc(entries, func(a, b *Entry) int {
		switch {
		case a.Combined > b.Combined:
			return -1
		case a.Combined < b.Combined:
			return 1
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return nil
}

// Select applies the selection policy to a ranked pool: the top batch
// entries, or one uniform pick among the top randomTopN when that width is
// set. Selection never removes entries from the pool.
func (r *Ranker) Select(ranked []*Entry, batch, randomTopN int, rng *rand.Rand) []*Entry {
	if len(ranked) == 0 {
		return nil
	}
	if randomTopN > 0 {
		n := randomTopN
		if n > len(ranked) {
			n = len(ranked)
		}
		return []*Entry{ranked[rng.Intn(n)]}
	}
	if batch < 1 {
		batch = 1
	}
	if batch > len(ranked) {
		batch = len(ranked)
	}
	return ranked[:batch:batch]
}
