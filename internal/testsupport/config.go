package testsupport

import (
	"testing"

	"classicine/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config pointed at the given scan roots with a small
// worker pool suitable for tests. It applies any provided options.
func NewConfig(t testing.TB, dirs []string, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Scan.Dirs = dirs
	cfg.Runtime.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBatch sets the selection batch size on the test config.
func WithBatch(batch int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Selection.Batch = batch
	}
}

// WithWindow sets the n-gram window on the test config.
func WithWindow(window int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tokenizer.Window = window
	}
}

// WithFileSizeBias enables the file size classifier on the test config.
func WithFileSizeBias(bias float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Classifiers.FileSizeBias = &bias
	}
}
