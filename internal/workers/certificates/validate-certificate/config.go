package validatecertificate

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// ValidationURL is prefixed to the unique code to build the public link.
	ValidationURL string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		ValidationURL: "https://elevate.dev/api/certificates/validate/",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ValidationURL == "" {
		return fmt.Errorf("validation url is required")
	}
	return nil
}
