package flows

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/goGate/persist"
	"github.com/MrEthical07/goGate/session"
)

// Bootstrap reasons reported in BootstrapResult.
const (
	ReasonRestored = "restored"
	ReasonEmpty    = "empty"
	ReasonCorrupt  = "corrupt"
	ReasonRejected = "rejected"
)

// BootstrapResult describes what startup found in persistence.
type BootstrapResult struct {
	Restored bool
	Reason   string
	Username string
}

// BootstrapMetrics carries metric IDs used by the bootstrap flow.
type BootstrapMetrics struct {
	Restored int
	Empty    int
	Rejected int
	Corrupt  int
}

// BootstrapDeps captures bootstrap dependencies.
type BootstrapDeps struct {
	Load             func(context.Context) (persist.Snapshot, persist.LoadStatus)
	Login            func(session.UserIdentity, string) error
	MarkBootstrapped func() bool

	MetricInc func(int)
	EmitAudit AuditFunc
	Logger    *slog.Logger

	Metrics BootstrapMetrics
	Event   string
}

// RunBootstrap reconstructs the session from persistence and marks the store
// ready. It never fails: anything unusable leaves the session signed out.
func RunBootstrap(ctx context.Context, deps BootstrapDeps) BootstrapResult {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Logger == nil {
		deps.Logger = discardLogger()
	}
	if deps.MarkBootstrapped == nil {
		deps.MarkBootstrapped = func() bool { return false }
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// Ready is set on every path, including a panicking backend.
	defer deps.MarkBootstrapped()

	res := restore(ctx, deps)

	switch res.Reason {
	case ReasonRestored:
		deps.MetricInc(deps.Metrics.Restored)
	case ReasonEmpty:
		deps.MetricInc(deps.Metrics.Empty)
	case ReasonCorrupt:
		deps.MetricInc(deps.Metrics.Corrupt)
	case ReasonRejected:
		deps.MetricInc(deps.Metrics.Rejected)
	}
	deps.Logger.Debug("bootstrap finished", "reason", res.Reason, "restored", res.Restored)
	deps.EmitAudit(ctx, deps.Event, res.Restored, Subject{Username: res.Username}, nil, func() map[string]string {
		return map[string]string{"reason": res.Reason}
	})
	return res
}

func restore(ctx context.Context, deps BootstrapDeps) (res BootstrapResult) {
	defer func() {
		if r := recover(); r != nil {
			deps.Logger.Warn("bootstrap: storage panicked", "panic", r)
			res = BootstrapResult{Reason: ReasonCorrupt}
		}
	}()

	if deps.Load == nil || deps.Login == nil {
		return BootstrapResult{Reason: ReasonEmpty}
	}

	snap, status := deps.Load(ctx)
	switch status {
	case persist.StatusAbsent:
		return BootstrapResult{Reason: ReasonEmpty}
	case persist.StatusCorrupt:
		return BootstrapResult{Reason: ReasonCorrupt}
	}

	if err := deps.Login(snap.User, snap.Token); err != nil {
		deps.Logger.Debug("bootstrap: stored session rejected", "error", err)
		return BootstrapResult{Reason: ReasonRejected}
	}
	return BootstrapResult{Restored: true, Reason: ReasonRestored, Username: snap.User.Username}
}
