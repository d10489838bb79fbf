package featuresubscribe

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// SendConfirmation mails new subscribers through SES.
	SendConfirmation bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
