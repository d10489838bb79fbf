package fetchrecommendedpaths

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	PathTTL time.Duration
	// CacheWriters bounds concurrent cache writes after a database fill.
	CacheWriters int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		PathTTL:      10 * time.Minute,
		CacheWriters: 4,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PathTTL <= 0 {
		return fmt.Errorf("path_ttl must be positive")
	}
	if c.CacheWriters <= 0 {
		return fmt.Errorf("cache_writers must be positive")
	}
	return nil
}
