package goGate

import (
	"io"
	"log/slog"

	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/persist"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/session"
)

// Builder assembles a Gate. It is single use: Build may succeed once.
type Builder struct {
	config Config

	storage       persist.Storage
	table         *policy.Table
	authenticator Authenticator
	auditSink     AuditSink
	logger        *slog.Logger

	built bool
}

// New returns a Builder with DefaultConfig, in-memory storage and the
// reference policy table.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStorage sets the persistence backend. Without it the session lives in
// process memory only.
func (b *Builder) WithStorage(s persist.Storage) *Builder {
	b.storage = s
	return b
}

// WithPolicy replaces the reference policy table.
func (b *Builder) WithPolicy(t *policy.Table) *Builder {
	b.table = t
	return b
}

// WithAuthenticator enables LoginWithPassword.
func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.authenticator = a
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithDevMode enables SwitchRole.
func (b *Builder) WithDevMode(enabled bool) *Builder {
	b.config.Dev.Enabled = enabled
	return b
}

// Build validates the configuration and returns a Gate. The Gate is not
// bootstrapped; call Gate.Bootstrap before the first Decide.
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	storage := b.storage
	if storage == nil {
		logger.Info("goGate: no storage configured, session will not survive restarts")
		storage = persist.NewMemoryStorage()
	}
	adapter, err := persist.NewAdapter(storage, cfg.Persistence.Namespace, logger.With("component", "persist"))
	if err != nil {
		return nil, err
	}

	table := b.table
	if table == nil {
		table = policy.Reference()
	}

	g := &Gate{
		config:        cfg,
		adapter:       adapter,
		store:         session.NewStore(adapter, logger.With("component", "session")),
		table:         table,
		guard:         guard.New(string(table.Login()), string(table.Home())),
		authenticator: b.authenticator,
		metrics:       NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		logger: logger.With("component", "gate"),
	}
	g.flows = g.buildFlowDeps()

	b.built = true
	return g, nil
}
