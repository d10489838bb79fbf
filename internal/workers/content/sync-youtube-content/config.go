package syncyoutubecontent

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout    time.Duration
	BaseURL    string
	APIKey     string
	MaxRetries int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		BaseURL:    "https://www.googleapis.com/youtube/v3",
		MaxRetries: 2,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	return nil
}
