package node

import (
	"testing"
	"time"

	"github.com/nohmar/tranquility/src/common"
	"github.com/sirupsen/logrus"
)

// Config holds node-level options.
type Config struct {
	// RetryTimeout is the interval between re-sends of unacknowledged
	// broadcast copies.
	RetryTimeout time.Duration `mapstructure:"retry"`

	Logger *logrus.Logger
}

// NewConfig creates a node Config.
func NewConfig(retryTimeout time.Duration, logger *logrus.Logger) *Config {
	return &Config{
		RetryTimeout: retryTimeout,
		Logger:       logger,
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		RetryTimeout: 500 * time.Millisecond,
		Logger:       logger,
	}
}

// TestConfig returns a Config for tests, with the logger routed to the
// test's log.
func TestConfig(t *testing.T) *Config {
	config := DefaultConfig()
	config.RetryTimeout = 20 * time.Millisecond
	config.Logger = common.NewTestLogger(t)
	return config
}
