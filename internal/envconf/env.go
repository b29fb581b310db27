// Package envconf reads binary configuration from the environment, optionally
// seeded from .env files.
package envconf

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/joho/godotenv"
)

// LoadDotenv loads the given files (".env" when none are given). Missing
// files are ignored; variables already set win.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// EnvString reads a string env var with a default.
func EnvString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// EnvBool reads a bool env var with a default.
func EnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvInt reads a positive int env var with a default.
func EnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// EnvDuration reads a positive duration env var with a default.
func EnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// GateConfig overlays GOGATE_* variables on goGate.DefaultConfig.
func GateConfig() goGate.Config {
	cfg := goGate.DefaultConfig()

	cfg.Persistence.Namespace = EnvString("GOGATE_NAMESPACE", cfg.Persistence.Namespace)
	cfg.Persistence.LoadTimeout = EnvDuration("GOGATE_LOAD_TIMEOUT", cfg.Persistence.LoadTimeout)

	cfg.Routing.AuditDenied = EnvBool("GOGATE_AUDIT_DENIED", cfg.Routing.AuditDenied)
	cfg.Routing.PendingRetryAfter = EnvDuration("GOGATE_PENDING_RETRY_AFTER", cfg.Routing.PendingRetryAfter)

	cfg.Audit.Enabled = EnvBool("GOGATE_AUDIT", cfg.Audit.Enabled)
	cfg.Audit.BufferSize = EnvInt("GOGATE_AUDIT_BUFFER", cfg.Audit.BufferSize)
	cfg.Audit.DropIfFull = EnvBool("GOGATE_AUDIT_DROP_IF_FULL", cfg.Audit.DropIfFull)

	cfg.Metrics.Enabled = EnvBool("GOGATE_METRICS", cfg.Metrics.Enabled)
	cfg.Metrics.EnableLatencyHistograms = EnvBool("GOGATE_LATENCY_HISTOGRAMS", cfg.Metrics.EnableLatencyHistograms)

	cfg.Dev.Enabled = EnvBool("GOGATE_DEV", cfg.Dev.Enabled)
	return cfg
}

// NewLogger builds a logger writing to stderr. format is "json" or "text";
// level is debug, info, warn or error.
func NewLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
