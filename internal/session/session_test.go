package session_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"classicine/internal/classify"
	"classicine/internal/decisions"
	"classicine/internal/player"
	"classicine/internal/session"
	"classicine/internal/testsupport"
)

// scriptedPresenter plays back canned outcomes keyed by base name and
// records presentation order.
type scriptedPresenter struct {
	outcomes map[string]player.Outcome
	calls    []string
}

func (p *scriptedPresenter) Present(_ context.Context, path string) (player.Outcome, error) {
	name := filepath.Base(path)
	p.calls = append(p.calls, name)
	if outcome, ok := p.outcomes[name]; ok {
		return outcome, nil
	}
	return player.OutcomeSkipped, nil
}

func TestBootstrapBuildsPool(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteVideo(t, dir, "action.hero.mp4", 64)
	testsupport.WriteVideo(t, dir, "comedy.clip.mp4", 64)
	testsupport.WriteVideo(t, dir, "action.sequel.mp4", 64)
	testsupport.WriteVideo(t, dir, "notes.txt", 64)

	s := session.New(testsupport.NewConfig(t, []string{dir}), testsupport.MustOpenStore(t), nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if len(s.Pool()) != 3 {
		t.Fatalf("pool = %d entries", len(s.Pool()))
	}
	for _, e := range s.Pool() {
		if e.State != classify.Unclassified {
			t.Fatalf("pool entry %s not unclassified", e.Path)
		}
		if len(e.Features) == 0 {
			t.Fatalf("entry %s has no features", e.Path)
		}
		if e.DirCount != 3 {
			t.Fatalf("entry %s dir count = %d", e.Path, e.DirCount)
		}
	}
}

func TestBootstrapExcludesDecidedPaths(t *testing.T) {
	dir := t.TempDir()
	hero := testsupport.WriteVideo(t, dir, "action.hero.mp4", 64)
	testsupport.WriteVideo(t, dir, "comedy.clip.mp4", 64)

	store := testsupport.MustOpenStore(t)
	testsupport.MustAppend(t, store, hero, decisions.LabelPositive)

	s := session.New(testsupport.NewConfig(t, []string{dir}), store, nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if len(s.Pool()) != 1 {
		t.Fatalf("pool = %d, want the decided path excluded", len(s.Pool()))
	}
	if s.Pool()[0].Path == hero {
		t.Fatal("decided path re-entered the pool")
	}
	if len(s.Entries()) != 2 {
		t.Fatalf("entries = %d, decided files must stay visible to reporting", len(s.Entries()))
	}
}

func TestRunPersistsEveryDecision(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteVideo(t, dir, "a.mp4", 64)
	testsupport.WriteVideo(t, dir, "b.mp4", 64)

	store := testsupport.MustOpenStore(t)
	s := session.New(testsupport.NewConfig(t, []string{dir}), store, nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	presenter := &scriptedPresenter{outcomes: map[string]player.Outcome{
		"a.mp4": player.OutcomePositive,
		"b.mp4": player.OutcomeNegative,
	}}
	if err := s.Run(context.Background(), presenter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(s.Pool()) != 0 {
		t.Fatalf("pool not drained: %d left", len(s.Pool()))
	}
	records, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("persisted %d decisions, want 2", len(records))
	}
	labels := map[string]decisions.Label{}
	for _, rec := range records {
		labels[filepath.Base(rec.Path)] = rec.Label
		if rec.SessionID != s.ID() {
			t.Fatalf("record carries session %q, want %q", rec.SessionID, s.ID())
		}
	}
	if labels["a.mp4"] != decisions.LabelPositive || labels["b.mp4"] != decisions.LabelNegative {
		t.Fatalf("labels = %v", labels)
	}
}

func TestPositiveDecisionPromotesSharedFeatures(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteVideo(t, dir, "action.hero.mp4", 64)
	testsupport.WriteVideo(t, dir, "comedy.clip.mp4", 64)
	testsupport.WriteVideo(t, dir, "action.sequel.mp4", 64)

	s := session.New(testsupport.NewConfig(t, []string{dir}), testsupport.MustOpenStore(t), nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	presenter := &scriptedPresenter{outcomes: map[string]player.Outcome{
		"action.hero.mp4":   player.OutcomePositive,
		"action.sequel.mp4": player.OutcomeNegative,
		"comedy.clip.mp4":   player.OutcomeNegative,
	}}
	if err := s.Run(context.Background(), presenter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Cold start ties break on discovery order, so action.hero goes first.
	// Its positive decision shares the "action" features with the sequel,
	// which must outrank the comedy clip on the next pass.
	want := []string{"action.hero.mp4", "action.sequel.mp4", "comedy.clip.mp4"}
	if len(presenter.calls) != len(want) {
		t.Fatalf("presented %v", presenter.calls)
	}
	for i, name := range want {
		if presenter.calls[i] != name {
			t.Fatalf("presentation order = %v, want %v", presenter.calls, want)
		}
	}
}

// durabilityPresenter snapshots how many decisions are durable in the
// store at the moment each candidate is presented.
type durabilityPresenter struct {
	store   *decisions.Store
	durable []int
}

func (p *durabilityPresenter) Present(ctx context.Context, _ string) (player.Outcome, error) {
	records, err := p.store.LoadAll(ctx)
	if err != nil {
		return player.OutcomeSkipped, err
	}
	p.durable = append(p.durable, len(records))
	return player.OutcomePositive, nil
}

func TestBatchPresentsOnlyAfterPreviousDecisionIsDurable(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteVideo(t, dir, "a.mp4", 64)
	testsupport.WriteVideo(t, dir, "b.mp4", 64)
	testsupport.WriteVideo(t, dir, "c.mp4", 64)

	store := testsupport.MustOpenStore(t)
	cfg := testsupport.NewConfig(t, []string{dir}, testsupport.WithBatch(3))
	s := session.New(cfg, store, nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	presenter := &durabilityPresenter{store: store}
	if err := s.Run(context.Background(), presenter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Candidate N+1 may not be presented before decision N is durable.
	want := []int{0, 1, 2}
	if len(presenter.durable) != len(want) {
		t.Fatalf("presented %d candidates, want %d", len(presenter.durable), len(want))
	}
	for i, n := range want {
		if presenter.durable[i] != n {
			t.Fatalf("candidate %d presented with %d durable decisions, want %d (all: %v)",
				i, presenter.durable[i], n, presenter.durable)
		}
	}
}

func TestRunShowsCandidateCard(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteVideo(t, dir, "action.hero.mp4", 64)

	s := session.New(testsupport.NewConfig(t, []string{dir}), testsupport.MustOpenStore(t), nil)
	var out bytes.Buffer
	s.SetOutput(&out)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	presenter := &scriptedPresenter{outcomes: map[string]player.Outcome{
		"action.hero.mp4": player.OutcomePositive,
	}}
	if err := s.Run(context.Background(), presenter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	card := out.String()
	for _, want := range []string{path, "ngram", "combined"} {
		if !strings.Contains(card, want) {
			t.Fatalf("candidate card missing %q:\n%s", want, card)
		}
	}
}

func TestSkipIsNotADecision(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteVideo(t, dir, "broken.mp4", 64)

	store := testsupport.MustOpenStore(t)
	s := session.New(testsupport.NewConfig(t, []string{dir}), store, nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	presenter := &scriptedPresenter{} // everything skips
	if err := s.Run(context.Background(), presenter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	records, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("skip must not persist anything, got %d records", len(records))
	}
	for _, e := range s.Entries() {
		if e.Path == path && e.State != classify.Unclassified {
			t.Fatal("skipped entry changed state")
		}
	}
}

func TestPersistenceFailureHaltsSession(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteVideo(t, dir, "a.mp4", 64)

	store, err := decisions.Open(filepath.Join(t.TempDir(), "playlist.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	s := session.New(testsupport.NewConfig(t, []string{dir}), store, nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	presenter := &scriptedPresenter{outcomes: map[string]player.Outcome{
		"a.mp4": player.OutcomePositive,
	}}
	if err := s.Run(context.Background(), presenter); err == nil {
		t.Fatal("expected the session to halt on a persistence failure")
	}
}

func TestScoreIncludeDecided(t *testing.T) {
	dir := t.TempDir()
	hero := testsupport.WriteVideo(t, dir, "action.hero.mp4", 64)
	testsupport.WriteVideo(t, dir, "comedy.clip.mp4", 64)

	store := testsupport.MustOpenStore(t)
	testsupport.MustAppend(t, store, hero, decisions.LabelPositive)

	s := session.New(testsupport.NewConfig(t, []string{dir}), store, nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	undecided, err := s.Score(context.Background(), false)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(undecided) != 1 {
		t.Fatalf("undecided ranking = %d entries", len(undecided))
	}

	all, err := s.Score(context.Background(), true)
	if err != nil {
		t.Fatalf("Score include-decided: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("full ranking = %d entries", len(all))
	}
}

func TestFileSizeBiasOrdersColdStart(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteVideo(t, dir, "big.mp4", 4096)
	testsupport.WriteVideo(t, dir, "small.mp4", 16)

	cfg := testsupport.NewConfig(t, []string{dir}, testsupport.WithFileSizeBias(2.0))
	s := session.New(cfg, testsupport.MustOpenStore(t), nil)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	ranked, err := s.Score(context.Background(), false)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if filepath.Base(ranked[0].Path) != "big.mp4" {
		t.Fatalf("positive size bias must rank the larger file first, got %q", ranked[0].Path)
	}

	inverted := testsupport.NewConfig(t, []string{dir}, testsupport.WithFileSizeBias(-2.0))
	s2 := session.New(inverted, testsupport.MustOpenStore(t), nil)
	if err := s2.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap inverted: %v", err)
	}
	ranked2, err := s2.Score(context.Background(), false)
	if err != nil {
		t.Fatalf("Score inverted: %v", err)
	}
	if filepath.Base(ranked2[0].Path) != "small.mp4" {
		t.Fatalf("negative size bias must rank the smaller file first, got %q", ranked2[0].Path)
	}
}
