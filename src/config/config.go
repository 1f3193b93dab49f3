package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/nohmar/tranquility/src/common"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default configuration values.
const (
	DefaultLogLevel     = "debug"
	DefaultServiceAddr  = "127.0.0.1:8000"
	DefaultRetryTimeout = 500 * time.Millisecond
)

// Config contains all the configuration properties of a tranquility node.
type Config struct {
	// DataDir is the top-level directory containing tranquility configuration
	// and data. An optional peers.json in this directory seeds the neighbor
	// list before any topology message arrives.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile is an optional file that receives a copy of the log output.
	// Logs always go to stderr regardless, because stdout carries the wire
	// protocol.
	LogFile string `mapstructure:"log-file"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service exposing
	// node stats.
	ServiceAddr string `mapstructure:"service-listen"`

	// RetryTimeout is the interval between re-sends of unacknowledged
	// broadcast copies.
	RetryTimeout time.Duration `mapstructure:"retry"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	return &Config{
		DataDir:      DefaultDataDir(),
		LogLevel:     DefaultLogLevel,
		ServiceAddr:  DefaultServiceAddr,
		RetryTimeout: DefaultRetryTimeout,
	}
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}

// Logger returns the underlying logrus Logger. It writes to stderr so that
// stdout stays reserved for wire messages, and duplicates output to LogFile
// when one is configured.
func (c *Config) Logger() *logrus.Logger {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Out = os.Stderr
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			pathMap := lfshook.PathMap{}
			for _, level := range logrus.AllLevels {
				if level <= c.logger.Level {
					pathMap[level] = c.LogFile
				}
			}
			c.logger.Hooks.Add(lfshook.NewHook(
				pathMap,
				new(logrus.TextFormatter),
			))
		}
	}
	return c.logger
}

// DefaultDataDir returns the default directory name for top-level
// tranquility config based on the underlying OS, attempting to respect
// conventions.
func DefaultDataDir() string {
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Tranquility")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Tranquility")
		} else {
			return filepath.Join(home, ".tranquility")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
