// Package config loads battleship server/client runtime settings from the
// environment, following the teacher's accumulated-problems Load() idiom:
// env vars are parsed into a Config, invalid overrides are collected as
// human-readable problems, and a single joined error is returned only if
// any were found.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBrokerAddr is the default MQTT-like broker host:port.
	DefaultBrokerAddr = "localhost:1883"
	// DefaultKeepAlive matches §6's "credentials (user, empty password,
	// keepalive 5s)" broker contract.
	DefaultKeepAlive = 5 * time.Second
	// DefaultRequestQueueSize is the default Config.RequestQueueSize. The
	// pubsub adapter does not read it; it sizes its outbound request channel
	// with its own constant.
	DefaultRequestQueueSize = 64
	// DefaultIncomingQueueSize is the default Config.IncomingQueueSize. The
	// pubsub adapter does not read it; it sizes its inbound message channel
	// with its own constant.
	DefaultIncomingQueueSize = 64

	// DefaultLogLevel controls verbosity for engine/client logs.
	DefaultLogLevel = "info"
	// DefaultLogPath is where structured logs are written.
	DefaultLogPath       = "battleship.log"
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 5
	DefaultLogMaxAgeDays = 7
	DefaultLogCompress   = true
)

// Config captures the runtime tunables shared by the server and client
// entrypoints.
type Config struct {
	BrokerAddr        string
	BrokerUser        string
	BrokerWebsocket   bool
	KeepAlive         time.Duration
	RequestQueueSize  int
	IncomingQueueSize int
	Logging           LoggingConfig
}

// LoggingConfig captures structured logging configuration options.
type LoggingConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads BATTLESHIP_* environment variables, applying sane defaults and
// returning descriptive errors for invalid overrides.
func Load() (*Config, error) {
	cfg := &Config{
		BrokerAddr:        getString("BATTLESHIP_BROKER_ADDR", DefaultBrokerAddr),
		BrokerUser:        strings.TrimSpace(os.Getenv("BATTLESHIP_BROKER_USER")),
		BrokerWebsocket:   false,
		KeepAlive:         DefaultKeepAlive,
		RequestQueueSize:  DefaultRequestQueueSize,
		IncomingQueueSize: DefaultIncomingQueueSize,
		Logging: LoggingConfig{
			Level:      getString("BATTLESHIP_LOG_LEVEL", DefaultLogLevel),
			Path:       getString("BATTLESHIP_LOG_PATH", DefaultLogPath),
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
			Compress:   DefaultLogCompress,
		},
	}

	var problems []string

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_KEEPALIVE")); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_KEEPALIVE must be a positive duration, got %q", raw))
		} else {
			cfg.KeepAlive = duration
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_REQUEST_QUEUE_SIZE")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_REQUEST_QUEUE_SIZE must be a positive integer, got %q", raw))
		} else {
			cfg.RequestQueueSize = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_INCOMING_QUEUE_SIZE")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_INCOMING_QUEUE_SIZE must be a positive integer, got %q", raw))
		} else {
			cfg.IncomingQueueSize = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_LOG_MAX_SIZE_MB")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_LOG_MAX_SIZE_MB must be a positive integer, got %q", raw))
		} else {
			cfg.Logging.MaxSizeMB = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_LOG_MAX_BACKUPS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_LOG_MAX_BACKUPS must be a non-negative integer, got %q", raw))
		} else {
			cfg.Logging.MaxBackups = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_LOG_MAX_AGE_DAYS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_LOG_MAX_AGE_DAYS must be a non-negative integer, got %q", raw))
		} else {
			cfg.Logging.MaxAgeDays = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_BROKER_WEBSOCKET")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_BROKER_WEBSOCKET must be a boolean value, got %q", raw))
		} else {
			cfg.BrokerWebsocket = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BATTLESHIP_LOG_COMPRESS")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("BATTLESHIP_LOG_COMPRESS must be a boolean value, got %q", raw))
		} else {
			cfg.Logging.Compress = value
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf(strings.Join(problems, "; "))
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
