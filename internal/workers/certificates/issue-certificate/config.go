package issuecertificate

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// TopicARN receives certificate.issued events. Empty disables publishing.
	TopicARN string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
