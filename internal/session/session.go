package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"classicine/internal/classify"
	"classicine/internal/config"
	"classicine/internal/decisions"
	"classicine/internal/ngram"
	"classicine/internal/normalize"
	"classicine/internal/scan"
	"classicine/internal/tokenizer"
)

// retainMinCount is the document-frequency cut for the membership set. A
// feature seen in a single path can never generalize, so it is dropped.
const retainMinCount = 2

// Session owns the candidate pool and the trained per-run state.
type Session struct {
	cfg    *config.Config
	store  *decisions.Store
	logger *slog.Logger
	out    io.Writer
	id     string

	tok     *tokenizer.Tokenizer
	allowed *ngram.Set
	model   *classify.LogOdds
	ranker  *classify.Ranker

	// pool holds unclassified entries; entries holds the full scan result
	// including already-decided files for include-decided reporting.
	pool    []*classify.Entry
	entries []*classify.Entry
}

// New creates a session over an open decision store.
func New(cfg *config.Config, store *decisions.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		cfg:    cfg,
		store:  store,
		logger: logger,
		out:    io.Discard,
		id:     uuid.NewString(),
	}
}

// SetOutput directs the interactive candidate cards to w. The default
// discards them; logging is unaffected.
func (s *Session) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	s.out = w
}

// ID returns the session identifier stamped on every decision record.
func (s *Session) ID() string { return s.id }

// Pool returns the unclassified entries in discovery order.
func (s *Session) Pool() []*classify.Entry { return s.pool }

// Entries returns every scanned entry, decided ones included.
func (s *Session) Entries() []*classify.Entry { return s.entries }

// Ranker exposes the enabled classifier set for reporting.
func (s *Session) Ranker() *classify.Ranker { return s.ranker }

// Bootstrap runs the parallel preparation phases. It is safe to call once
// per session, before Run or Score.
func (s *Session) Bootstrap(ctx context.Context) error {
	lowerPriority(s.logger)

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load decision log: %w", err)
	}
	decided := make(map[string]decisions.Label, len(records))
	for _, rec := range records {
		decided[rec.Path] = rec.Label
	}

	started := time.Now()
	walker := scan.NewWalker(s.cfg.Scan.VideoExts, s.logger)
	result := walker.Walk(s.cfg.Scan.Dirs)
	s.logger.Info("scan complete",
		slog.Int("files", len(result.Files)),
		slog.Int("skipped", result.Skipped),
		slog.Duration("elapsed", time.Since(started)),
	)

	dirCounts := make(map[string]int)
	for _, f := range result.Files {
		dirCounts[filepath.Dir(f.Path)]++
	}

	// The corpus covers decided paths too so the vocabulary and feature
	// statistics reflect everything the model will be seeded with.
	corpus := make([]string, 0, len(result.Files)+len(records))
	now := time.Now()
	s.entries = make([]*classify.Entry, 0, len(result.Files))
	for i, f := range result.Files {
		norm := normalize.Text(f.Path)
		corpus = append(corpus, norm)
		entry := &classify.Entry{
			Path:     f.Path,
			Norm:     norm,
			Size:     f.Size,
			DirCount: dirCounts[filepath.Dir(f.Path)],
			Age:      now.Sub(f.ModTime),
			Seq:      i,
		}
		if label, ok := decided[f.Path]; ok {
			if label == decisions.LabelPositive {
				entry.State = classify.Positive
			} else {
				entry.State = classify.Negative
			}
		}
		s.entries = append(s.entries, entry)
	}
	scanned := make(map[string]struct{}, len(result.Files))
	for _, f := range result.Files {
		scanned[f.Path] = struct{}{}
	}
	for _, rec := range records {
		// Decided files still on disk are already in the corpus; counting
		// them again would inflate their feature document frequencies.
		if _, ok := scanned[rec.Path]; !ok {
			corpus = append(corpus, normalize.Text(rec.Path))
		}
	}

	started = time.Now()
	s.tok = tokenizer.Train(corpus, s.cfg.Runtime.Workers, s.logger)
	s.logger.Info("tokenizer trained",
		slog.Int("vocabulary", s.tok.TokenMap().Count()),
		slog.Int("merges", s.tok.MergeCount()),
		slog.Duration("elapsed", time.Since(started)),
	)

	started = time.Now()
	seqs := make([]*tokenizer.Sequence, len(corpus))
	for i, text := range corpus {
		seqs[i] = s.tok.Encode(text)
	}
	counter, err := ngram.CountCorpus(ctx, seqs, s.cfg.Tokenizer.Window, s.cfg.Runtime.Workers)
	if err != nil {
		return fmt.Errorf("count corpus features: %w", err)
	}
	retained := counter.Frequent(retainMinCount)
	s.allowed = ngram.NewSet(retained, s.cfg.Filter.FalsePositiveRate)
	s.logger.Info("feature set built",
		slog.Int("distinct", counter.Len()),
		slog.Int("retained", len(retained)),
		slog.Duration("elapsed", time.Since(started)),
	)

	started = time.Now()
	for i, entry := range s.entries {
		entry.Features = ngram.Extract(seqs[i], s.cfg.Tokenizer.Window, s.allowed)
		if entry.State == classify.Unclassified {
			s.pool = append(s.pool, entry)
		}
	}

	s.model = classify.NewLogOdds(s.allowed.Len())
	for _, rec := range records {
		seq := s.tok.Encode(normalize.Text(rec.Path))
		features := ngram.Extract(seq, s.cfg.Tokenizer.Window, s.allowed)
		s.model.Observe(features, rec.Label == decisions.LabelPositive)
	}
	s.logger.Info("model seeded",
		slog.Int("decisions", len(records)),
		slog.Int("pool", len(s.pool)),
		slog.Duration("elapsed", time.Since(started)),
	)

	classifiers, err := s.buildClassifiers()
	if err != nil {
		return err
	}
	s.ranker = classify.NewRanker(classifiers, s.cfg.Runtime.Workers)
	return nil
}

func (s *Session) buildClassifiers() ([]classify.Classifier, error) {
	classifiers := []classify.Classifier{s.model}
	cc := s.cfg.Classifiers
	if cc.FileSizeBias != nil {
		c, err := classify.NewFileSize(*cc.FileSizeBias, cc.FileSizeOffset)
		if err != nil {
			return nil, err
		}
		classifiers = append(classifiers, c)
	}
	if cc.DirSizeBias != nil {
		c, err := classify.NewDirSize(*cc.DirSizeBias, cc.DirSizeOffset)
		if err != nil {
			return nil, err
		}
		classifiers = append(classifiers, c)
	}
	if cc.FileAgeBias != nil {
		c, err := classify.NewFileAge(*cc.FileAgeBias, cc.FileAgeOffset)
		if err != nil {
			return nil, err
		}
		classifiers = append(classifiers, c)
	}
	return classifiers, nil
}

// Score ranks entries without presenting anything: the read-only path for
// the scoring report. With includeDecided, already-classified entries join
// the ranking.
func (s *Session) Score(ctx context.Context, includeDecided bool) ([]*classify.Entry, error) {
	entries := s.pool
	if includeDecided {
		entries = s.entries
	}
	ranked := make([]*classify.Entry, len(entries))
	copy(ranked, entries)
	if err := s.ranker.Rank(ctx, ranked); err != nil {
		return nil, err
	}
	return ranked, nil
}

// lowerPriority drops the process scheduling priority so bootstrap churn
// stays polite on a desktop. Best effort only.
func lowerPriority(logger *slog.Logger) {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, 10); err != nil {
		logger.Debug("could not lower process priority", slog.Any("error", err))
	}
}
