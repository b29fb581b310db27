package goGate

import (
	"errors"
	"strings"
	"time"
)

// Config holds every tunable of a Gate. Obtain one from DefaultConfig and
// adjust fields before passing it to Builder.WithConfig.
type Config struct {
	Persistence PersistenceConfig
	Routing     RoutingConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
	Dev         DevConfig
}

/*
====================================
PERSISTENCE CONFIG
====================================
*/

// PersistenceConfig controls where the session snapshot is kept.
type PersistenceConfig struct {
	// Namespace prefixes the token and user keys. Empty keeps the bare keys.
	Namespace string
	// LoadTimeout bounds the bootstrap read. Zero means no extra deadline.
	LoadTimeout time.Duration
}

/*
====================================
ROUTING CONFIG
====================================
*/

// RoutingConfig controls guard side effects and HTTP adapters.
type RoutingConfig struct {
	// AuditDenied emits a guard_denied audit event on every redirect.
	AuditDenied bool
	// PendingRetryAfter is sent as Retry-After when a request arrives before
	// bootstrap has finished.
	PendingRetryAfter time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEV CONFIG
====================================
*/

// DevConfig enables development-only helpers such as SwitchRole.
type DevConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Persistence: PersistenceConfig{
			LoadTimeout: 2 * time.Second,
		},
		Routing: RoutingConfig{
			PendingRetryAfter: time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the configuration used when Builder.WithConfig is
// never called.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// Config holds only value fields; the copy is already deep.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Persistence.Namespace, " \t\r\n") {
		return errors.New("Persistence Namespace must not contain whitespace")
	}
	if c.Persistence.LoadTimeout < 0 {
		return errors.New("Persistence LoadTimeout must be >= 0")
	}
	if c.Routing.PendingRetryAfter < 0 {
		return errors.New("Routing PendingRetryAfter must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}
