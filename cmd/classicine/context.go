package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"classicine/internal/config"
	"classicine/internal/logging"
	"classicine/internal/player"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		adjusted := *cfg
		adjusted.Logging.Level = level
		c.logger, c.loggerErr = logging.NewFromConfig(&adjusted)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) playerOptions(logger *slog.Logger) player.Options {
	cfg := c.config
	return player.Options{
		Binary:         cfg.Player.Binary,
		StartupTimeout: time.Duration(cfg.Player.StartupTimeoutSecs) * time.Second,
		PollInterval:   time.Duration(cfg.Player.PollIntervalMillis) * time.Millisecond,
		Port:           cfg.Player.Port,
		Fullscreen:     cfg.Player.Fullscreen,
		Logger:         logger,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
