package searchpaths

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout      time.Duration
	Index        string
	DefaultLimit int
	MaxLimit     int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		Index:        "paths",
		DefaultLimit: 9,
		MaxLimit:     100,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}
	if c.DefaultLimit <= 0 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit must be between 1 and max_limit")
	}
	return nil
}
