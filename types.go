package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

type (
	// Session is a point-in-time copy of the session state.
	Session = session.Session
	// UserIdentity is the signed-in user.
	UserIdentity = session.UserIdentity
	// Role is one of the seven role tiers.
	Role = role.Role
	// Decision is a guard outcome plus redirect target.
	Decision = guard.Decision
	// Outcome is ALLOW, DENY_UNAUTHENTICATED, DENY_FORBIDDEN or PENDING.
	Outcome = guard.Outcome
	// Destination identifies a screen.
	Destination = policy.Destination
	// Link is a navigation entry.
	Link = policy.Link
	// BootstrapResult describes what Bootstrap found in storage.
	BootstrapResult = flows.BootstrapResult
)

const (
	Allow               = guard.Allow
	DenyUnauthenticated = guard.DenyUnauthenticated
	DenyForbidden       = guard.DenyForbidden
	Pending             = guard.Pending
)

// Authenticator exchanges credentials for an identity and an opaque token.
// Implementations return ErrInvalidCredentials (possibly wrapped) when the
// service refuses the pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (UserIdentity, string, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, username, password string) (UserIdentity, string, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, username, password string) (UserIdentity, string, error) {
	return f(ctx, username, password)
}
