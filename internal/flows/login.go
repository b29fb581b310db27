package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/goGate/session"
)

// LoginMetrics carries metric IDs used by the login flows.
type LoginMetrics struct {
	LoginSuccess  int
	LoginRejected int
}

// LoginEvents carries audit event names used by the login flows.
type LoginEvents struct {
	Login         string
	LoginRejected string
}

// LoginErrors carries host-level sentinel errors used by the login flows.
type LoginErrors struct {
	NotReady    error
	PersistFail error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Authenticate func(ctx context.Context, username, password string) (session.UserIdentity, string, error)
	Save         func(context.Context, session.UserIdentity, string) error
	Login        func(session.UserIdentity, string) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Logger    *slog.Logger

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

func (deps *LoginDeps) defaults() {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Logger == nil {
		deps.Logger = discardLogger()
	}
}

// RunLogin validates the identity, persists it and replaces the in-memory
// session. A rejected identity is neither persisted nor stored. When only
// persistence fails, the session is still replaced and the persistence error
// is returned wrapped in Errors.PersistFail.
func RunLogin(ctx context.Context, user session.UserIdentity, token string, deps LoginDeps) error {
	deps.defaults()
	if deps.Save == nil || deps.Login == nil {
		return deps.Errors.NotReady
	}

	if err := checkIdentity(user, token); err != nil {
		reject(ctx, deps, user, err)
		return err
	}

	saveErr := deps.Save(ctx, user, token)
	if err := deps.Login(user, token); err != nil {
		reject(ctx, deps, user, err)
		return err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.Login, true, subjectOf(user), saveErr, nil)

	if saveErr != nil {
		deps.Logger.Warn("login: session not persisted", "username", user.Username, "error", saveErr)
		if deps.Errors.PersistFail != nil {
			return fmt.Errorf("%w: %w", deps.Errors.PersistFail, saveErr)
		}
		return saveErr
	}
	return nil
}

// RunPasswordLogin exchanges credentials for an identity and token through
// Authenticate, then runs RunLogin.
func RunPasswordLogin(ctx context.Context, username, password string, deps LoginDeps) (session.UserIdentity, error) {
	deps.defaults()
	if deps.Authenticate == nil {
		return session.UserIdentity{}, deps.Errors.NotReady
	}

	user, token, err := deps.Authenticate(ctx, username, password)
	if err != nil {
		reject(ctx, deps, session.UserIdentity{Username: username}, err)
		return session.UserIdentity{}, err
	}
	if err := RunLogin(ctx, user, token, deps); err != nil {
		if deps.Errors.PersistFail != nil && errors.Is(err, deps.Errors.PersistFail) {
			return user, err
		}
		return session.UserIdentity{}, err
	}
	return user, nil
}

func checkIdentity(user session.UserIdentity, token string) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if token == "" {
		return session.ErrEmptyToken
	}
	return nil
}

func reject(ctx context.Context, deps LoginDeps, user session.UserIdentity, err error) {
	deps.MetricInc(deps.Metrics.LoginRejected)
	deps.Logger.Debug("login rejected", "username", user.Username, "error", err)
	deps.EmitAudit(ctx, deps.Events.LoginRejected, false, subjectOf(user), err, nil)
}

func subjectOf(user session.UserIdentity) Subject {
	return Subject{Username: user.Username, Role: user.Role.String()}
}
