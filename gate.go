package goGate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/persist"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

// Gate owns the session store, its persisted copy and the policy table.
type Gate struct {
	config        Config
	adapter       *persist.Adapter
	store         *session.Store
	table         *policy.Table
	guard         guard.Guard
	authenticator Authenticator
	metrics       *Metrics
	audit         *audit.Dispatcher
	logger        *slog.Logger

	flows flows.Deps

	bootstrapOnce   sync.Once
	bootstrapResult BootstrapResult
}

func (g *Gate) buildFlowDeps() flows.Deps {
	metricInc := func(id int) { g.metrics.Inc(MetricID(id)) }

	login := flows.LoginDeps{
		Save:      g.adapter.Save,
		Login:     g.store.Login,
		MetricInc: metricInc,
		EmitAudit: g.emitAudit,
		Logger:    g.logger,
		Metrics: flows.LoginMetrics{
			LoginSuccess:  int(MetricLoginSuccess),
			LoginRejected: int(MetricLoginRejected),
		},
		Events: flows.LoginEvents{
			Login:         AuditLogin,
			LoginRejected: AuditLoginRejected,
		},
		Errors: flows.LoginErrors{
			NotReady:    ErrGateNotReady,
			PersistFail: ErrPersistFailed,
		},
	}
	if g.authenticator != nil {
		login.Authenticate = g.authenticator.Authenticate
	}

	return flows.Deps{
		Bootstrap: flows.BootstrapDeps{
			Load:             g.adapter.LoadDetailed,
			Login:            g.store.Login,
			MarkBootstrapped: g.store.MarkBootstrapped,
			MetricInc:        metricInc,
			EmitAudit:        g.emitAudit,
			Logger:           g.logger,
			Metrics: flows.BootstrapMetrics{
				Restored: int(MetricBootstrapRestored),
				Empty:    int(MetricBootstrapEmpty),
				Rejected: int(MetricBootstrapRejected),
				Corrupt:  int(MetricPersistCorrupt),
			},
			Event: AuditBootstrap,
		},
		Login: login,
		Logout: flows.LogoutDeps{
			Snapshot:  g.store.Snapshot,
			Logout:    g.store.Logout,
			MetricInc: metricInc,
			EmitAudit: g.emitAudit,
			Metric:    int(MetricLogout),
			Event:     AuditLogout,
		},
		Switch: flows.SwitchRoleDeps{
			Enabled:   g.config.Dev.Enabled,
			Snapshot:  g.store.Snapshot,
			Login:     g.store.Login,
			MetricInc: metricInc,
			EmitAudit: g.emitAudit,
			Logger:    g.logger,
			Metric:    int(MetricRoleSwitch),
			Event:     AuditRoleSwitch,
			Errors: flows.SwitchRoleErrors{
				DevModeDisabled:  ErrDevModeDisabled,
				NotAuthenticated: ErrNotAuthenticated,
			},
		},
		Decide: flows.DecideDeps{
			Guard:       g.guard,
			Rule:        g.table.Rule,
			AuditDenied: g.config.Routing.AuditDenied,
			MetricInc:   metricInc,
			Observe:     func(d time.Duration) { g.metrics.Observe(MetricDecideLatency, d) },
			EmitAudit:   g.emitAudit,
			Metrics: flows.DecideMetrics{
				Allow:               int(MetricGuardAllow),
				DenyUnauthenticated: int(MetricGuardDenyUnauthenticated),
				DenyForbidden:       int(MetricGuardDenyForbidden),
				Pending:             int(MetricGuardPending),
			},
			Event: AuditGuardDenied,
		},
	}
}

/*
====================================
LIFECYCLE
====================================
*/

// Bootstrap restores the persisted session, if any, and marks the Gate ready.
// Only the first call does any work; later calls return the first result.
// Bootstrap never fails: unusable stored data leaves the user signed out.
func (g *Gate) Bootstrap(ctx context.Context) BootstrapResult {
	if g == nil || g.store == nil {
		return BootstrapResult{Reason: flows.ReasonEmpty}
	}
	g.bootstrapOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		if timeout := g.config.Persistence.LoadTimeout; timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		g.bootstrapResult = flows.RunBootstrap(ctx, g.flows.Bootstrap)
		g.logger.Info("bootstrap complete", "restored", g.bootstrapResult.Restored, "reason", g.bootstrapResult.Reason)
	})
	return g.bootstrapResult
}

// Ready is closed once Bootstrap has finished.
func (g *Gate) Ready() <-chan struct{} {
	return g.store.Ready()
}

// WaitReady blocks until Bootstrap has finished or ctx is done.
func (g *Gate) WaitReady(ctx context.Context) error {
	if g == nil || g.store == nil {
		return ErrGateNotReady
	}
	select {
	case <-g.store.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending audit events. The Gate remains usable for reads.
func (g *Gate) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

/*
====================================
SESSION
====================================
*/

// Session returns a copy of the current session.
func (g *Gate) Session() Session {
	if g == nil || g.store == nil {
		return Session{}
	}
	return g.store.Snapshot()
}

// Login persists user and token and makes them the current session, replacing
// any previous one entirely. An invalid identity or empty token is rejected
// without touching the session or storage. If only persistence fails, the
// session is still replaced and an error wrapping ErrPersistFailed is returned.
func (g *Gate) Login(ctx context.Context, user UserIdentity, token string) error {
	if g == nil || g.store == nil {
		return ErrGateNotReady
	}
	return flows.RunLogin(ctx, user, token, g.flows.Login)
}

// LoginWithPassword authenticates through the configured Authenticator and
// then behaves like Login.
func (g *Gate) LoginWithPassword(ctx context.Context, username, password string) (UserIdentity, error) {
	if g == nil || g.store == nil {
		return UserIdentity{}, ErrGateNotReady
	}
	if g.authenticator == nil {
		return UserIdentity{}, ErrNoAuthenticator
	}
	return flows.RunPasswordLogin(ctx, username, password, g.flows.Login)
}

// Logout clears the session and erases its persisted copy. It never fails.
func (g *Gate) Logout(ctx context.Context) {
	if g == nil || g.store == nil {
		return
	}
	flows.RunLogout(ctx, g.flows.Logout)
}

// SwitchRole re-signs the current user in as r with a placeholder token.
// Only the in-memory session changes; the persisted snapshot is left alone.
// Development mode only.
func (g *Gate) SwitchRole(ctx context.Context, r role.Role) (UserIdentity, error) {
	if g == nil || g.store == nil {
		return UserIdentity{}, ErrGateNotReady
	}
	return flows.RunSwitchRole(ctx, r, g.flows.Switch)
}

/*
====================================
ROUTING
====================================
*/

// Decide evaluates the current session against dest.
func (g *Gate) Decide(ctx context.Context, dest Destination) Decision {
	if g == nil || g.store == nil {
		return Decision{Outcome: Pending}
	}
	return flows.RunDecide(ctx, g.store.Snapshot(), dest, g.flows.Decide)
}

// DecideSession evaluates s, typically a snapshot the caller already holds,
// against dest.
func (g *Gate) DecideSession(ctx context.Context, s Session, dest Destination) Decision {
	if g == nil || g.store == nil {
		return Decision{Outcome: Pending}
	}
	return flows.RunDecide(ctx, s, dest, g.flows.Decide)
}

// DecidePath resolves a URL path to its destination and evaluates it. Paths
// the table does not list are treated as unlisted destinations named by the
// path itself, so the table's fallback mode applies.
func (g *Gate) DecidePath(ctx context.Context, path string) (Decision, Destination) {
	if g == nil || g.table == nil {
		return Decision{Outcome: Pending}, ""
	}
	dest, ok := g.table.Resolve(path)
	if !ok {
		dest = Destination(path)
	}
	return g.Decide(ctx, dest), dest
}

// RedirectPath returns the URL path of a decision's redirect target.
func (g *Gate) RedirectPath(d Decision) (string, bool) {
	if g == nil || g.table == nil || d.Redirect == "" {
		return "", false
	}
	p, err := g.table.Path(Destination(d.Redirect))
	if err != nil {
		return "", false
	}
	return p, true
}

// Links returns the navigation links visible to the current session.
func (g *Gate) Links() []Link {
	if g == nil || g.table == nil {
		return nil
	}
	return g.table.Links(g.Session())
}

// Brand returns the brand link target for the current session.
func (g *Gate) Brand() Link {
	if g == nil || g.table == nil {
		return Link{}
	}
	return g.table.Brand(g.Session())
}

// Policy returns the policy table.
func (g *Gate) Policy() *policy.Table {
	if g == nil {
		return nil
	}
	return g.table
}

// Config returns a copy of the Gate's configuration.
func (g *Gate) Config() Config {
	if g == nil {
		return Config{}
	}
	return cloneConfig(g.config)
}

/*
====================================
OBSERVABILITY
====================================
*/

func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

func (g *Gate) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}
