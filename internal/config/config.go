package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Scan configures candidate discovery.
type Scan struct {
	Dirs      []string `toml:"dirs"`
	VideoExts []string `toml:"video_exts"`
}

// Tokenizer configures sub-word learning and feature extraction.
type Tokenizer struct {
	// Window is the maximum n-gram length over the token sequence.
	Window int `toml:"window"`
}

// Classifiers configures the metric scorers. A classifier runs only when
// its bias is set; |bias| must exceed 1 and a negative bias inverts the
// preference.
type Classifiers struct {
	FileSizeBias   *float64 `toml:"file_size_bias"`
	FileSizeOffset float64  `toml:"file_size_offset"`
	DirSizeBias    *float64 `toml:"dir_size_bias"`
	DirSizeOffset  float64  `toml:"dir_size_offset"`
	FileAgeBias    *float64 `toml:"file_age_bias"`
	// FileAgeOffset is in seconds.
	FileAgeOffset float64 `toml:"file_age_offset"`
}

// Selection configures how candidates are drawn from the ranking.
type Selection struct {
	Batch      int `toml:"batch"`
	RandomTopN int `toml:"random_top_n"`
}

// Filter configures the feature membership filter.
type Filter struct {
	FalsePositiveRate float64 `toml:"false_positive_rate"`
}

// Player configures the VLC feedback collaborator.
type Player struct {
	Binary     string `toml:"binary"`
	Fullscreen bool   `toml:"fullscreen"`
	// Port pins the HTTP control interface. 0 picks a free port per launch.
	Port               int `toml:"port"`
	StartupTimeoutSecs int `toml:"startup_timeout"`
	PollIntervalMillis int `toml:"poll_interval_ms"`
}

// Logging configures log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Runtime configures worker parallelism.
type Runtime struct {
	// Workers bounds parallel bootstrap work. 0 means one worker per CPU.
	Workers int `toml:"workers"`
}

// Config encapsulates all configuration values for classicine.
type Config struct {
	Scan        Scan        `toml:"scan"`
	Tokenizer   Tokenizer   `toml:"tokenizer"`
	Classifiers Classifiers `toml:"classifiers"`
	Selection   Selection   `toml:"selection"`
	Filter      Filter      `toml:"filter"`
	Player      Player      `toml:"player"`
	Logging     Logging     `toml:"logging"`
	Runtime     Runtime     `toml:"runtime"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/classicine/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("classicine.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates directories the session writes into.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Logging.Dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
