package flows

import (
	"context"

	"github.com/MrEthical07/goGate/session"
)

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	Snapshot func() session.Session
	Logout   func(context.Context)

	MetricInc func(int)
	EmitAudit AuditFunc

	Metric int
	Event  string
}

// RunLogout clears the session and its persisted copy. It never fails and is
// safe to call when already signed out.
func RunLogout(ctx context.Context, deps LogoutDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Logout == nil {
		return
	}

	var subject Subject
	wasSignedIn := false
	if deps.Snapshot != nil {
		s := deps.Snapshot()
		if r, ok := s.Role(); ok {
			wasSignedIn = true
			subject = Subject{Username: s.Username(), Role: r.String()}
		}
	}

	deps.Logout(ctx)
	deps.MetricInc(deps.Metric)
	deps.EmitAudit(ctx, deps.Event, wasSignedIn, subject, nil, nil)
}
