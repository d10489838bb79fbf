package validatetestanswers

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// MaxAnswers bounds the number of answered questions accepted in one submission.
	MaxAnswers int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:    5 * time.Second,
		MaxAnswers: 50,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxAnswers <= 0 {
		return fmt.Errorf("max_answers must be positive")
	}
	return nil
}
