package config

const (
	defaultWindow             = 5
	defaultFileSizeOffset     = float64(1 << 20)
	defaultDirSizeOffset      = 0.0
	defaultFileAgeOffset      = 86400.0
	defaultBatch              = 1
	defaultFalsePositiveRate  = 0.01
	defaultPlayerBinary       = "vlc"
	defaultStartupTimeoutSecs = 60
	defaultPollIntervalMillis = 100
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultVideoExts() []string {
	return []string{"avi", "flv", "mov", "f4v", "m2ts", "m4v", "mkv", "mpg", "webm", "wmv", "mp4"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			Dirs:      []string{"."},
			VideoExts: defaultVideoExts(),
		},
		Tokenizer: Tokenizer{
			Window: defaultWindow,
		},
		Classifiers: Classifiers{
			FileSizeOffset: defaultFileSizeOffset,
			DirSizeOffset:  defaultDirSizeOffset,
			FileAgeOffset:  defaultFileAgeOffset,
		},
		Selection: Selection{
			Batch: defaultBatch,
		},
		Filter: Filter{
			FalsePositiveRate: defaultFalsePositiveRate,
		},
		Player: Player{
			Binary:             defaultPlayerBinary,
			StartupTimeoutSecs: defaultStartupTimeoutSecs,
			PollIntervalMillis: defaultPollIntervalMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
