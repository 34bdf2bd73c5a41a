package ngram

import (
	"context"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"classicine/internal/tokenizer"
)

// Counter is a sharded feature-occurrence table. The shard for a feature
// is a pure function of the feature id, so every increment for one feature
// serializes on the same mutex and the summed result matches what a
// single-threaded count over the same input would produce.
type Counter struct {
	shards []countShard
}

type countShard struct {
	mu     sync.Mutex
	counts map[Feature]uint64
}

// NewCounter allocates a counter with the given shard count (minimum one).
func NewCounter(shards int) *Counter {
	if shards < 1 {
		shards = 1
	}
	c := &Counter{shards: make([]countShard, shards)}
	for i := range c.shards {
		c.shards[i].counts = make(map[Feature]uint64)
	}
	return c
}

// Add increments one feature.
func (c *Counter) Add(f Feature) {
	s := &c.shards[uint64(f)%uint64(len(c.shards))]
	s.mu.Lock()
	s.counts[f]++
	s.mu.Unlock()
}

// Count returns the total for one feature.
func (c *Counter) Count(f Feature) uint64 {
	s := &c.shards[uint64(f)%uint64(len(c.shards))]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[f]
}

// Len reports the number of distinct features seen.
func (c *Counter) Len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		total += len(s.counts)
		s.mu.Unlock()
	}
	return total
}

// Frequent returns every feature whose count meets min, sorted for
// deterministic downstream construction.
func (c *Counter) Frequent(min uint64) []Feature {
	var out []Feature
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for f, n := range s.counts {
			if n >= min {
				out = append(out, f)
			}
		}
		s.mu.Unlock()
	}
	slices.Sort(out)
	return out
}

// CountCorpus tallies, per sequence, the distinct features of every
// 1..window n-gram across the corpus using a worker pool. Each sequence
// contributes at most one count per feature, so the result is a document
// frequency.
func CountCorpus(ctx context.Context, seqs []*tokenizer.Sequence, window, workers int) (*Counter, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	counter := NewCounter(workers)

	chunk := len(seqs) / (workers * 4)
	if chunk < 32 {
		chunk = 32
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(seqs); start += chunk {
		end := start + chunk
		if end > len(seqs) {
			end = len(seqs)
		}
		part := seqs[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, seq := range part {
				for _, f := range Extract(seq, window, nil) {
					counter.Add(f)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counter, nil
}
