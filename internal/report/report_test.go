package report_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"classicine/internal/classify"
	"classicine/internal/report"
)

type fixedScorer struct {
	name  string
	value float64
}

func (f fixedScorer) Name() string { return f.name }

func (f fixedScorer) Score(*classify.Entry) float64 { return f.value }

func rankedEntries() []*classify.Entry {
	return []*classify.Entry{
		{
			Path:     "/library/action/hero.mp4",
			Raw:      []float64{1.5},
			Norms:    []float64{1.0},
			Combined: 1.0,
			State:    classify.Positive,
		},
		{
			Path:     "/library/action/sequel.mp4",
			Raw:      []float64{0.5},
			Norms:    []float64{0.25},
			Combined: 0.25,
		},
		{
			Path:     "/library/comedy/clip.mp4",
			Raw:      []float64{0.1},
			Norms:    []float64{0.0},
			Combined: 0.0,
		},
	}
}

func TestBuildKeepsRankOrderAndScores(t *testing.T) {
	r := report.Build(rankedEntries(), []classify.Classifier{fixedScorer{name: "ngram"}})

	if len(r.Rows) != 3 {
		t.Fatalf("rows = %d", len(r.Rows))
	}
	if r.Rows[0].Path != "/library/action/hero.mp4" {
		t.Fatalf("order not preserved: %q first", r.Rows[0].Path)
	}
	score, ok := r.Rows[0].Scores["ngram"]
	if !ok {
		t.Fatal("missing ngram score")
	}
	if score.Raw != 1.5 || score.Normalized != 1.0 {
		t.Fatalf("score = %+v", score)
	}
	if r.Rows[0].State != "positive" {
		t.Fatalf("state = %q", r.Rows[0].State)
	}
}

func TestRenderJSONEmitsOneObjectPerRow(t *testing.T) {
	r := report.Build(rankedEntries(), []classify.Classifier{fixedScorer{name: "ngram"}})

	var buf bytes.Buffer
	if err := r.RenderJSON(&buf); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	lines := 0
	for scanner.Scan() {
		var row report.Row
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("emitted %d lines", lines)
	}
}

func TestRenderTableIncludesClassifierColumns(t *testing.T) {
	r := report.Build(rankedEntries(), []classify.Classifier{fixedScorer{name: "ngram"}})

	var buf bytes.Buffer
	if err := r.RenderTable(&buf); err != nil {
		t.Fatalf("RenderTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ngram raw", "ngram norm", "combined", "hero.mp4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestDetailShowsFactsAndScores(t *testing.T) {
	e := &classify.Entry{
		Path:     "/library/action/hero.mp4",
		Norm:     "action hero mp4",
		Size:     1 << 20,
		DirCount: 3,
		Age:      48 * time.Hour,
		Raw:      []float64{1.5},
		Norms:    []float64{0.75},
		Combined: 0.75,
	}

	out := report.Detail(e, []classify.Classifier{fixedScorer{name: "ngram"}})
	wants := []string{
		"/library/action/hero.mp4",
		"action hero mp4",
		"1.0 MiB",
		"ngram",
		"1.5000 raw, 0.7500 normalized",
		"combined",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestAggregateGroupsByDirectory(t *testing.T) {
	r := report.Build(rankedEntries(), []classify.Classifier{fixedScorer{name: "ngram"}})
	agg := r.Aggregate()

	if len(agg.Rows) != 2 {
		t.Fatalf("directories = %d", len(agg.Rows))
	}
	first := agg.Rows[0]
	if first.Dir != "/library/action" {
		t.Fatalf("best directory = %q", first.Dir)
	}
	if first.Files != 2 {
		t.Fatalf("files = %d", first.Files)
	}
	if first.MeanCombined != 0.625 {
		t.Fatalf("mean = %v", first.MeanCombined)
	}
}
