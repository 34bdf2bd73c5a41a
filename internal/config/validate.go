package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTokenizer(); err != nil {
		return err
	}
	if err := c.validateClassifiers(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if c.Player.Port < 0 || c.Player.Port > 65535 {
		return fmt.Errorf("player.port must be between 0 and 65535 (got %d)", c.Player.Port)
	}
	return nil
}

func (c *Config) validateTokenizer() error {
	if c.Tokenizer.Window < 1 {
		return errors.New("tokenizer.window must be at least 1")
	}
	return nil
}

func (c *Config) validateClassifiers() error {
	biases := map[string]*float64{
		"classifiers.file_size_bias": c.Classifiers.FileSizeBias,
		"classifiers.dir_size_bias":  c.Classifiers.DirSizeBias,
		"classifiers.file_age_bias":  c.Classifiers.FileAgeBias,
	}
	for key, bias := range biases {
		if bias == nil {
			continue
		}
		if math.Abs(*bias) <= 1 {
			return fmt.Errorf("%s must have magnitude greater than 1 (got %v); use a negative value to invert the preference", key, *bias)
		}
	}
	offsets := map[string]float64{
		"classifiers.file_size_offset": c.Classifiers.FileSizeOffset,
		"classifiers.dir_size_offset":  c.Classifiers.DirSizeOffset,
		"classifiers.file_age_offset":  c.Classifiers.FileAgeOffset,
	}
	for key, offset := range offsets {
		if offset < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}

func (c *Config) validateFilter() error {
	rate := c.Filter.FalsePositiveRate
	if rate <= 0 || rate >= 1 {
		return fmt.Errorf("filter.false_positive_rate must be between 0 and 1 exclusive (got %v)", rate)
	}
	return nil
}
