package scan

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// File is one discovered candidate.
type File struct {
	Path    string // absolute, cleaned
	Size    int64
	ModTime time.Time
}

// Result carries the collected files plus the count of entries skipped for
// metadata or read errors.
type Result struct {
	Files   []File
	Skipped int
}

// Walker filters a recursive directory walk by lowercase extension.
type Walker struct {
	exts   map[string]struct{}
	logger *slog.Logger
}

// NewWalker builds a walker for the given extensions (leading dot
// optional, case-insensitive).
func NewWalker(exts []string, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return &Walker{exts: set, logger: logger}
}

// Walk scans every root concurrently and returns the discovered files in
// deterministic (path-sorted) order. Unreadable roots count as skips, not
// failures; the walk as a whole never aborts.
func (w *Walker) Walk(roots []string) Result {
	var (
		mu      sync.Mutex
		files   []File
		skipped atomic.Int64
		wg      sync.WaitGroup
	)

	emit := func(f File) {
		mu.Lock()
		files = append(files, f)
		mu.Unlock()
	}

	var walkDir func(dir string)
	walkDir = func(dir string) {
		defer wg.Done()
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.logger.Warn("skipping unreadable directory", slog.String("dir", dir), slog.Any("error", err))
			skipped.Add(1)
			return
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				wg.Add(1)
				go walkDir(path)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if _, ok := w.exts[ext]; !ok {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				w.logger.Warn("skipping entry with unreadable metadata", slog.String("path", path), slog.Any("error", err))
				skipped.Add(1)
				continue
			}
			emit(File{Path: path, Size: info.Size(), ModTime: info.ModTime()})
		}
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			w.logger.Warn("skipping unresolvable root", slog.String("root", root), slog.Any("error", err))
			skipped.Add(1)
			continue
		}
		wg.Add(1)
		go walkDir(filepath.Clean(abs))
	}
	wg.Wait()

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return Result{Files: files, Skipped: int(skipped.Load())}
}
