package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/session"
)

// DecideMetrics carries metric IDs used by the decide flow.
type DecideMetrics struct {
	Allow               int
	DenyUnauthenticated int
	DenyForbidden       int
	Pending             int
}

// DecideDeps captures guard-evaluation dependencies.
type DecideDeps struct {
	Guard guard.Guard
	Rule  func(policy.Destination) policy.Rule

	AuditDenied bool
	MetricInc   func(int)
	Observe     func(time.Duration)
	EmitAudit   AuditFunc
	Now         func() time.Time

	Metrics DecideMetrics
	Event   string
}

// RunDecide evaluates s against the rule for dest. Public destinations are
// open to everyone once bootstrap has finished; everything else goes through
// the guard.
func RunDecide(ctx context.Context, s session.Session, dest policy.Destination, deps DecideDeps) guard.Decision {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	start := deps.Now()

	rule := policy.Rule{Destination: dest, Mode: policy.ModeAuthenticated}
	if deps.Rule != nil {
		rule = deps.Rule(dest)
	}

	var d guard.Decision
	switch {
	case rule.Mode == policy.ModePublic && !s.Ready:
		d = guard.Decision{Outcome: guard.Pending}
	case rule.Mode == policy.ModePublic:
		d = guard.Decision{Outcome: guard.Allow}
	default:
		d = deps.Guard.Decide(s, rule.Requirement())
	}

	switch d.Outcome {
	case guard.Allow:
		deps.MetricInc(deps.Metrics.Allow)
	case guard.DenyUnauthenticated:
		deps.MetricInc(deps.Metrics.DenyUnauthenticated)
	case guard.DenyForbidden:
		deps.MetricInc(deps.Metrics.DenyForbidden)
	case guard.Pending:
		deps.MetricInc(deps.Metrics.Pending)
	}
	if deps.Observe != nil {
		deps.Observe(deps.Now().Sub(start))
	}

	if deps.AuditDenied && d.Outcome.Denied() {
		subject := Subject{Destination: string(dest), Outcome: d.Outcome.String()}
		if r, ok := s.Role(); ok {
			subject.Username = s.Username()
			subject.Role = r.String()
		}
		deps.EmitAudit(ctx, deps.Event, false, subject, nil, func() map[string]string {
			return map[string]string{"redirect": d.Redirect}
		})
	}
	return d
}
