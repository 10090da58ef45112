package config

import (
	"strings"
	"testing"
	"time"
)

func clearBattleshipEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BATTLESHIP_BROKER_ADDR",
		"BATTLESHIP_BROKER_USER",
		"BATTLESHIP_BROKER_WEBSOCKET",
		"BATTLESHIP_KEEPALIVE",
		"BATTLESHIP_REQUEST_QUEUE_SIZE",
		"BATTLESHIP_INCOMING_QUEUE_SIZE",
		"BATTLESHIP_LOG_LEVEL",
		"BATTLESHIP_LOG_PATH",
		"BATTLESHIP_LOG_MAX_SIZE_MB",
		"BATTLESHIP_LOG_MAX_BACKUPS",
		"BATTLESHIP_LOG_MAX_AGE_DAYS",
		"BATTLESHIP_LOG_COMPRESS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearBattleshipEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.BrokerAddr != DefaultBrokerAddr {
		t.Fatalf("expected default broker addr %q, got %q", DefaultBrokerAddr, cfg.BrokerAddr)
	}
	if cfg.BrokerUser != "" {
		t.Fatalf("expected empty default broker user, got %q", cfg.BrokerUser)
	}
	if cfg.BrokerWebsocket {
		t.Fatal("expected websocket transport to default to false")
	}
	if cfg.KeepAlive != DefaultKeepAlive {
		t.Fatalf("expected default keepalive %v, got %v", DefaultKeepAlive, cfg.KeepAlive)
	}
	if cfg.RequestQueueSize != DefaultRequestQueueSize {
		t.Fatalf("expected default request queue size %d, got %d", DefaultRequestQueueSize, cfg.RequestQueueSize)
	}
	if cfg.IncomingQueueSize != DefaultIncomingQueueSize {
		t.Fatalf("expected default incoming queue size %d, got %d", DefaultIncomingQueueSize, cfg.IncomingQueueSize)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.Logging.Level)
	}
	if cfg.Logging.Path != DefaultLogPath {
		t.Fatalf("expected default log path %q, got %q", DefaultLogPath, cfg.Logging.Path)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearBattleshipEnv(t)
	t.Setenv("BATTLESHIP_BROKER_ADDR", "broker.example:1884")
	t.Setenv("BATTLESHIP_BROKER_USER", "nvs0495")
	t.Setenv("BATTLESHIP_BROKER_WEBSOCKET", "true")
	t.Setenv("BATTLESHIP_KEEPALIVE", "10s")
	t.Setenv("BATTLESHIP_REQUEST_QUEUE_SIZE", "128")
	t.Setenv("BATTLESHIP_INCOMING_QUEUE_SIZE", "256")
	t.Setenv("BATTLESHIP_LOG_LEVEL", "debug")
	t.Setenv("BATTLESHIP_LOG_PATH", "/var/log/battleship.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.BrokerAddr != "broker.example:1884" {
		t.Fatalf("unexpected broker addr %q", cfg.BrokerAddr)
	}
	if cfg.BrokerUser != "nvs0495" {
		t.Fatalf("unexpected broker user %q", cfg.BrokerUser)
	}
	if !cfg.BrokerWebsocket {
		t.Fatal("expected websocket transport to be enabled")
	}
	if cfg.KeepAlive != 10*time.Second {
		t.Fatalf("expected keepalive 10s, got %v", cfg.KeepAlive)
	}
	if cfg.RequestQueueSize != 128 {
		t.Fatalf("expected request queue size 128, got %d", cfg.RequestQueueSize)
	}
	if cfg.IncomingQueueSize != 256 {
		t.Fatalf("expected incoming queue size 256, got %d", cfg.IncomingQueueSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected overridden log level debug, got %q", cfg.Logging.Level)
	}
}

func TestLoadReturnsValidationErrors(t *testing.T) {
	clearBattleshipEnv(t)
	t.Setenv("BATTLESHIP_KEEPALIVE", "not-a-duration")
	t.Setenv("BATTLESHIP_REQUEST_QUEUE_SIZE", "-1")
	t.Setenv("BATTLESHIP_INCOMING_QUEUE_SIZE", "0")
	t.Setenv("BATTLESHIP_LOG_COMPRESS", "notabool")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error from invalid configuration, got nil")
	}
	for _, want := range []string{
		"BATTLESHIP_KEEPALIVE",
		"BATTLESHIP_REQUEST_QUEUE_SIZE",
		"BATTLESHIP_INCOMING_QUEUE_SIZE",
		"BATTLESHIP_LOG_COMPRESS",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %s, got %q", want, err.Error())
		}
	}
}
