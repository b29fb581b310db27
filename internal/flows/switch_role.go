package flows

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

// DevTokenPrefix prefixes the placeholder token issued on a role switch.
const DevTokenPrefix = "dev-token-"

// SwitchRoleErrors carries host-level sentinel errors used by the role switch.
type SwitchRoleErrors struct {
	DevModeDisabled  error
	NotAuthenticated error
}

// SwitchRoleDeps captures role-switch dependencies. Login replaces the
// in-memory session only; the switch never reaches storage.
type SwitchRoleDeps struct {
	Enabled  bool
	Snapshot func() session.Session
	Login    func(session.UserIdentity, string) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Logger    *slog.Logger

	Metric int
	Event  string
	Errors SwitchRoleErrors
}

// RunSwitchRole signs the current user in again under a different role with
// a placeholder token. It is a development aid only: the persisted snapshot
// keeps the real identity and token, so a restart restores them.
func RunSwitchRole(ctx context.Context, to role.Role, deps SwitchRoleDeps) (session.UserIdentity, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Logger == nil {
		deps.Logger = discardLogger()
	}

	if !deps.Enabled {
		return session.UserIdentity{}, deps.Errors.DevModeDisabled
	}
	if !to.Valid() {
		return session.UserIdentity{}, role.ErrUnknownRole
	}
	if deps.Snapshot == nil || deps.Login == nil {
		return session.UserIdentity{}, deps.Errors.NotAuthenticated
	}

	s := deps.Snapshot()
	from, ok := s.Role()
	if !ok {
		return session.UserIdentity{}, deps.Errors.NotAuthenticated
	}

	user := *s.User
	user.Role = to
	if err := deps.Login(user, DevTokenPrefix+to.String()); err != nil {
		deps.Logger.Debug("role switch rejected", "username", user.Username, "error", err)
		return session.UserIdentity{}, err
	}

	deps.MetricInc(deps.Metric)
	deps.EmitAudit(ctx, deps.Event, true, subjectOf(user), nil, func() map[string]string {
		return map[string]string{"from": from.String(), "to": to.String()}
	})
	return user, nil
}
