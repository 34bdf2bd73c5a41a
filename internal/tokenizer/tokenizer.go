package tokenizer

import (
	"log/slog"
	"math"
	"runtime"
	"sync"

	"classicine/internal/normalize"
)

// Merge records one learned rewrite: the pair and the token it became.
type Merge struct {
	Pair   Pair
	Merged Token
}

// Tokenizer holds the trained vocabulary and the ordered merge table.
// It is immutable once Train returns and safe for concurrent use.
type Tokenizer struct {
	tm     *TokenMap
	merges []Merge
}

// Train learns a tokenizer from the normalized corpus. A tiny corpus or
// one without repeated pairs simply yields character-level tokens; that is
// the correct output, not a failure. workers bounds the merge-scan pool;
// values below one fall back to GOMAXPROCS.
func Train(corpus []string, workers int, logger *slog.Logger) *Tokenizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	tm := NewTokenMap(' ', rune(normalize.Separator))
	t := &Tokenizer{tm: tm}

	seqs := make([]*Sequence, 0, len(corpus))
	for _, s := range corpus {
		seqs = append(seqs, sequenceFromString(s, tm, true))
	}
	if len(seqs) == 0 {
		return t
	}

	// Minimum pair support scales with corpus size. This acts as crude
	// stemming: cook-ing, cook-er, cook-ed keep the shared stem unless the
	// full word is genuinely common.
	minSupport := int64(math.Log2(float64(len(seqs)) + 1))
	if minSupport < 2 {
		minSupport = 2
	}

	counts := newPairCounts(workers)
	lastReserved := tm.LastReserved()
	for _, seq := range seqs {
		seq.forEachPair(lastReserved, func(p Pair) {
			counts.add(p, 1)
		})
	}

	chunkSize := len(seqs) / workers
	if chunkSize < 64 {
		chunkSize = 64
	}

	for {
		pair, count, ok := counts.best(tm)
		if !ok || count < minSupport {
			break
		}

		merged := tm.Merge(pair)
		t.merges = append(t.merges, Merge{Pair: pair, Merged: merged})

		var wg sync.WaitGroup
		for start := 0; start < len(seqs); start += chunkSize {
			end := start + chunkSize
			if end > len(seqs) {
				end = len(seqs)
			}
			chunk := seqs[start:end]
			wg.Add(1)
			go func() {
				defer wg.Done()
				delta := make(map[Pair]int64)
				tmp := &Sequence{}
				for _, seq := range chunk {
					if !seq.mayContain(pair) {
						continue
					}
					if !tmp.replaceFrom(seq, pair, merged, lastReserved) {
						continue
					}
					seq.forEachPair(lastReserved, func(p Pair) { delta[p]-- })
					tmp.forEachPair(lastReserved, func(p Pair) { delta[p]++ })
					*seq, *tmp = *tmp, *seq
				}
				counts.applyDelta(delta)
			}()
		}
		wg.Wait()
	}

	logger.Debug("tokenizer trained",
		slog.Int("corpus", len(seqs)),
		slog.Int("vocabulary", tm.Count()),
		slog.Int("merges", len(t.merges)),
		slog.Int64("min_support", minSupport),
	)
	return t
}

// Encode tokenizes s with the learned merges applied in learned order.
// Characters outside the training vocabulary map to the unknown token.
func (t *Tokenizer) Encode(s string) *Sequence {
	lastReserved := t.tm.LastReserved()
	seq := sequenceFromString(s, t.tm, false)
	tmp := &Sequence{}
	for _, m := range t.merges {
		if !seq.mayContain(m.Pair) {
			continue
		}
		if tmp.replaceFrom(seq, m.Pair, m.Merged, lastReserved) {
			seq, tmp = tmp, seq
		}
	}
	return seq
}

// TokenMap exposes the trained vocabulary.
func (t *Tokenizer) TokenMap() *TokenMap {
	return t.tm
}

// MergeCount reports how many merges training learned.
func (t *Tokenizer) MergeCount() int {
	return len(t.merges)
}

// Merges returns a copy of the ordered merge table.
func (t *Tokenizer) Merges() []Merge {
	out := make([]Merge, len(t.merges))
	copy(out, t.merges)
	return out
}

func sequenceFromString(s string, tm *TokenMap, intern bool) *Sequence {
	seq := &Sequence{ids: make([]Token, 0, len(s))}
	for _, r := range s {
		var tok Token
		if intern {
			tok = tm.Intern(string(r))
		} else {
			tok = tm.Lookup(string(r))
		}
		seq.ids = append(seq.ids, tok)
	}
	seq.recalcMask(tm.LastReserved())
	return seq
}
