package getpath

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// PathTTL bounds how long a path detail stays cached. Zero disables caching.
	PathTTL time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		PathTTL: 10 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PathTTL < 0 {
		return fmt.Errorf("path_ttl must not be negative")
	}
	return nil
}
