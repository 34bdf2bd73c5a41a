package config

import (
	"fmt"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeScan(); err != nil {
		return err
	}
	c.normalizeSelection()
	c.normalizePlayer()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeRuntime()
	return nil
}

func (c *Config) normalizeScan() error {
	dirs := make([]string, 0, len(c.Scan.Dirs))
	for _, dir := range c.Scan.Dirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("scan.dirs: %w", err)
		}
		dirs = append(dirs, expanded)
	}
	if len(dirs) == 0 {
		expanded, err := expandPath(".")
		if err != nil {
			return fmt.Errorf("scan.dirs: %w", err)
		}
		dirs = []string{expanded}
	}
	c.Scan.Dirs = dirs

	exts := make([]string, 0, len(c.Scan.VideoExts))
	seen := make(map[string]struct{}, len(c.Scan.VideoExts))
	for _, ext := range c.Scan.VideoExts {
		normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultVideoExts()
	}
	c.Scan.VideoExts = exts
	return nil
}

func (c *Config) normalizeSelection() {
	if c.Selection.Batch <= 0 {
		c.Selection.Batch = defaultBatch
	}
	if c.Selection.RandomTopN < 0 {
		c.Selection.RandomTopN = 0
	}
}

func (c *Config) normalizePlayer() {
	c.Player.Binary = strings.TrimSpace(c.Player.Binary)
	if c.Player.Binary == "" {
		c.Player.Binary = defaultPlayerBinary
	}
	if c.Player.StartupTimeoutSecs <= 0 {
		c.Player.StartupTimeoutSecs = defaultStartupTimeoutSecs
	}
	if c.Player.PollIntervalMillis <= 0 {
		c.Player.PollIntervalMillis = defaultPollIntervalMillis
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		expanded, err := expandPath(c.Logging.Dir)
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = expanded
	}
	return nil
}

func (c *Config) normalizeRuntime() {
	if c.Runtime.Workers <= 0 {
		c.Runtime.Workers = runtime.NumCPU()
	}
}
