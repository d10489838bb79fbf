package savetestsubmission

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout       time.Duration
	SubmissionTTL time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		SubmissionTTL: time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.SubmissionTTL < 0 {
		return fmt.Errorf("submission_ttl must not be negative")
	}
	return nil
}
