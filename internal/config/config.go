package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is probed when neither the command line nor the config file names one.
const DefaultEndpoint = "ws://localhost:1259"

const (
	defaultMessageWaitSeconds      = 5
	defaultHandshakeTimeoutSeconds = 45
	defaultLogLevel                = "warn"
)

// Config represents configuration data for a probe run.
type Config struct {
	Endpoint                string `yaml:"endpoint"`
	MessageWaitSeconds      int    `yaml:"message_wait_seconds"`
	HandshakeTimeoutSeconds int    `yaml:"handshake_timeout_seconds"`
	LogLevel                string `yaml:"log_level"`
}

// DefaultConfig returns the values used when no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		Endpoint:                DefaultEndpoint,
		MessageWaitSeconds:      defaultMessageWaitSeconds,
		HandshakeTimeoutSeconds: defaultHandshakeTimeoutSeconds,
		LogLevel:                defaultLogLevel,
	}
}

// Load reads configuration from yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		return errors.New("configuration must define an endpoint")
	}
	if c.MessageWaitSeconds <= 0 {
		c.MessageWaitSeconds = defaultMessageWaitSeconds
	}
	if c.HandshakeTimeoutSeconds <= 0 {
		c.HandshakeTimeoutSeconds = defaultHandshakeTimeoutSeconds
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// MessageWait is how long a connected probe waits for an unsolicited message.
func (c Config) MessageWait() time.Duration {
	return time.Duration(c.MessageWaitSeconds) * time.Second
}

// HandshakeTimeout bounds the opening handshake.
func (c Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutSeconds) * time.Second
}
