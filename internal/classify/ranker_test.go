package classify_test

import (
	"context"
	"math/rand"
	"testing"

	"classicine/internal/classify"
	"classicine/internal/ngram"
	"classicine/internal/normalize"
	"classicine/internal/tokenizer"
)

func rankAll(t *testing.T, r *classify.Ranker, entries []*classify.Entry) {
	t.Helper()
	if err := r.Rank(context.Background(), entries); err != nil {
		t.Fatalf("Rank: %v", err)
	}
}

func TestRankNormalizesAndCombines(t *testing.T) {
	size, err := classify.NewFileSize(2.0, 0)
	if err != nil {
		t.Fatalf("NewFileSize: %v", err)
	}
	entries := []*classify.Entry{
		{Path: "a", Size: 1 << 30, Seq: 0},
		{Path: "b", Size: 1 << 20, Seq: 1},
		{Path: "c", Size: 1 << 10, Seq: 2},
	}
	r := classify.NewRanker([]classify.Classifier{size}, 2)
	rankAll(t, r, entries)

	if entries[0].Path != "a" || entries[2].Path != "c" {
		t.Fatalf("unexpected order: %s %s %s", entries[0].Path, entries[1].Path, entries[2].Path)
	}
	if entries[0].Norms[0] != 1 || entries[2].Norms[0] != 0 {
		t.Fatalf("min-max normalization broken: %v %v", entries[0].Norms[0], entries[2].Norms[0])
	}
	for _, e := range entries {
		if e.Combined != e.Norms[0] {
			t.Fatalf("single-classifier combined must equal its norm, got %v vs %v", e.Combined, e.Norms[0])
		}
	}
}

func TestRankConstantColumnIsNeutral(t *testing.T) {
	size, err := classify.NewFileSize(2.0, 0)
	if err != nil {
		t.Fatalf("NewFileSize: %v", err)
	}
	entries := []*classify.Entry{
		{Path: "a", Size: 4096, Seq: 0},
		{Path: "b", Size: 4096, Seq: 1},
	}
	r := classify.NewRanker([]classify.Classifier{size}, 1)
	rankAll(t, r, entries)
	for _, e := range entries {
		if e.Norms[0] != 0.5 {
			t.Fatalf("constant column must normalize to 0.5, got %v", e.Norms[0])
		}
	}
	// Tie on combined score resolves by discovery order.
	if entries[0].Seq != 0 || entries[1].Seq != 1 {
		t.Fatal("tie-break must preserve discovery order")
	}
}

func TestRankEmptyPool(t *testing.T) {
	r := classify.NewRanker(nil, 1)
	if err := r.Rank(context.Background(), nil); err != nil {
		t.Fatalf("empty pool must not error: %v", err)
	}
}

func TestSelectPolicies(t *testing.T) {
	entries := []*classify.Entry{
		{Path: "a", Seq: 0}, {Path: "b", Seq: 1}, {Path: "c", Seq: 2},
	}
	r := classify.NewRanker(nil, 1)

	top := r.Select(entries, 1, 0, nil)
	if len(top) != 1 || top[0].Path != "a" {
		t.Fatalf("top-1 selection wrong: %+v", top)
	}

	batch := r.Select(entries, 2, 0, nil)
	if len(batch) != 2 || batch[1].Path != "b" {
		t.Fatalf("batch selection wrong: %+v", batch)
	}

	rng := rand.New(rand.NewSource(7))
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		pick := r.Select(entries, 1, 2, rng)
		if len(pick) != 1 {
			t.Fatalf("random-top-n must pick exactly one, got %d", len(pick))
		}
		if pick[0].Path == "c" {
			t.Fatal("random-top-2 picked outside the window")
		}
		seen[pick[0].Path] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatal("random-top-2 never varied its pick across 64 draws")
	}

	if got := r.Select(entries, 10, 0, nil); len(got) != 3 {
		t.Fatalf("oversized batch must clamp to pool size, got %d", len(got))
	}
	if len(entries) != 3 {
		t.Fatal("selection must never remove entries from the pool")
	}
}

// End-to-end ranking scenario: after one positive decision on an "action"
// file, the other action file must outrank the comedy file.
func TestSharedFeatureRaisesSiblingRank(t *testing.T) {
	paths := []string{
		"action.hero.mp4",
		"comedy.clip.mp4",
		"action.sequel.mp4",
	}
	corpus := make([]string, len(paths))
	for i, p := range paths {
		corpus[i] = normalize.Text(p)
	}
	tok := tokenizer.Train(corpus, 1, nil)

	counter, err := ngram.CountCorpus(context.Background(), encodeAll(tok, corpus), 5, 2)
	if err != nil {
		t.Fatalf("CountCorpus: %v", err)
	}
	retained := counter.Frequent(2)
	set := ngram.NewSet(retained, 0.01)

	sizes := []int64{2 << 30, 50 << 20, 1 << 30}
	entries := make([]*classify.Entry, len(paths))
	for i, p := range paths {
		entries[i] = &classify.Entry{
			Path:     p,
			Norm:     corpus[i],
			Size:     sizes[i],
			Seq:      i,
			Features: ngram.Extract(tok.Encode(corpus[i]), 5, set),
		}
	}

	model := classify.NewLogOdds(set.Len())
	r := classify.NewRanker([]classify.Classifier{model}, 2)

	// Decide "action.hero.mp4" positive and re-rank the remainder.
	model.Observe(entries[0].Features, true)
	rest := []*classify.Entry{entries[1], entries[2]}
	rankAll(t, r, rest)

	if rest[0].Path != "action.sequel.mp4" {
		t.Fatalf("shared feature must rank action.sequel above comedy.clip, got %s first", rest[0].Path)
	}
}

func encodeAll(tok *tokenizer.Tokenizer, corpus []string) []*tokenizer.Sequence {
	seqs := make([]*tokenizer.Sequence, len(corpus))
	for i, s := range corpus {
		seqs[i] = tok.Encode(s)
	}
	return seqs
}
