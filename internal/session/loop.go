package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"classicine/internal/classify"
	"classicine/internal/decisions"
	"classicine/internal/player"
	"classicine/internal/report"
)

// Presenter shows one candidate to the user and reports exactly one
// outcome. Implementations own the player lifecycle for the call.
type Presenter interface {
	Present(ctx context.Context, path string) (player.Outcome, error)
}

// VLCPresenter presents candidates through a fresh VLC process each.
type VLCPresenter struct {
	Options player.Options
}

// Present launches VLC on path, waits for it to load the file, and blocks
// until the user signals an outcome. Launch and startup failures degrade to
// a skip so one broken candidate cannot end the session.
func (p *VLCPresenter) Present(ctx context.Context, path string) (player.Outcome, error) {
	logger := p.Options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	proc, err := player.Launch(ctx, p.Options, path)
	if err != nil {
		logger.Warn("player launch failed", slog.String("path", path), slog.Any("error", err))
		return player.OutcomeSkipped, nil
	}
	defer proc.Close()

	if err := proc.WaitReady(ctx); err != nil {
		if ctx.Err() != nil {
			return player.OutcomeSkipped, ctx.Err()
		}
		logger.Warn("player never became ready", slog.String("path", path), slog.Any("error", err))
		return player.OutcomeSkipped, nil
	}
	return proc.Await(ctx)
}

type presentation struct {
	entry   *classify.Entry
	outcome player.Outcome
	err     error
}

// Run drives the interactive loop until the pool is empty or the context
// is cancelled. Every applied decision is durable before the next candidate
// is presented.
func (s *Session) Run(ctx context.Context, presenter Presenter) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return s.run(ctx, presenter, rng)
}

func (s *Session) run(ctx context.Context, presenter Presenter, rng *rand.Rand) error {
	for len(s.pool) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ranker.Rank(ctx, s.pool); err != nil {
			return err
		}
		selected := s.ranker.Select(s.pool, s.cfg.Selection.Batch, s.cfg.Selection.RandomTopN, rng)
		if err := s.runBatch(ctx, presenter, selected); err != nil {
			return err
		}
	}
	s.logger.Info("pool exhausted", slog.String("session", s.id))
	return nil
}

// runBatch presents the selected entries one at a time. One goroutine owns
// the player and emits outcomes on an ordered channel; the loop body
// applies them in emission order so the persist-then-learn sequence stays
// strictly serial. The producer waits for an ack after every outcome so
// the next candidate is never presented before the previous decision is
// durable.
func (s *Session) runBatch(ctx context.Context, presenter Presenter, selected []*classify.Entry) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan presentation)
	acks := make(chan struct{})
	go func() {
		defer close(events)
		for _, entry := range selected {
			s.showCandidate(entry)
			outcome, err := presenter.Present(ctx, entry.Path)
			select {
			case events <- presentation{entry: entry, outcome: outcome, err: err}:
			case <-ctx.Done():
				return
			}
			select {
			case <-acks:
			case <-ctx.Done():
				return
			}
		}
	}()

	for ev := range events {
		if ev.err != nil {
			return ev.err
		}
		if ev.outcome == player.OutcomeSkipped {
			// A skip is not a decision: nothing is persisted and the entry
			// stays Unclassified, but it leaves the pool so the loop cannot
			// re-present it forever.
			s.logger.Info("candidate skipped", slog.String("path", ev.entry.Path))
			s.removeFromPool(ev.entry)
		} else if err := s.apply(ctx, ev.entry, ev.outcome); err != nil {
			return err
		}
		select {
		case acks <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

// showCandidate prints the pre-playback card: the file's facts and where
// the latest ranking pass put it.
func (s *Session) showCandidate(entry *classify.Entry) {
	if s.out == nil {
		return
	}
	fmt.Fprintln(s.out, report.Detail(entry, s.ranker.Classifiers()))
}

// apply records one decision: persist first, then teach the model, then
// retire the entry from the pool. A persistence failure halts the session
// before the model diverges from the log.
func (s *Session) apply(ctx context.Context, entry *classify.Entry, outcome player.Outcome) error {
	label := decisions.LabelNegative
	state := classify.Negative
	if outcome == player.OutcomePositive {
		label = decisions.LabelPositive
		state = classify.Positive
	}

	if _, err := s.store.Append(ctx, entry.Path, label, s.id); err != nil {
		return fmt.Errorf("persist decision for %s: %w", entry.Path, err)
	}

	s.model.Observe(entry.Features, outcome == player.OutcomePositive)
	entry.State = state
	s.removeFromPool(entry)

	pos, neg := s.model.Decisions()
	s.logger.Info("decision applied",
		slog.String("path", entry.Path),
		slog.String("label", string(label)),
		slog.Uint64("positive", pos),
		slog.Uint64("negative", neg),
		slog.Int("remaining", len(s.pool)),
	)
	return nil
}

func (s *Session) removeFromPool(entry *classify.Entry) {
	for i, e := range s.pool {
		if e == entry {
			s.pool = append(s.pool[:i], s.pool[i+1:]...)
			return
		}
	}
}
