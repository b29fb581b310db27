package guard

import (
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

// Outcome is the result of a guard evaluation. The zero value is not a valid
// outcome so an unset Decision is detectable.
type Outcome uint8

const (
	// Allow lets the destination render.
	Allow Outcome = iota + 1
	// DenyUnauthenticated redirects to the login destination.
	DenyUnauthenticated
	// DenyForbidden redirects to the home destination.
	DenyForbidden
	// Pending means bootstrap has not finished; render nothing role-gated yet.
	Pending
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "ALLOW"
	case DenyUnauthenticated:
		return "DENY_UNAUTHENTICATED"
	case DenyForbidden:
		return "DENY_FORBIDDEN"
	case Pending:
		return "PENDING"
	default:
		return "UNKNOWN"
	}
}

// Denied reports whether the outcome carries a redirect.
func (o Outcome) Denied() bool {
	return o == DenyUnauthenticated || o == DenyForbidden
}

// Requirement is what a destination asks of the session. Open admits any
// authenticated user and ignores Roles.
type Requirement struct {
	Open  bool
	Roles role.Set
}

// AnyAuthenticated is the requirement of destinations without a role list.
func AnyAuthenticated() Requirement {
	return Requirement{Open: true}
}

// RequireRoles admits exactly the listed roles. With no roles it admits nobody.
func RequireRoles(roles ...role.Role) Requirement {
	return Requirement{Roles: role.NewSet(roles...)}
}

// Decision is an outcome plus, for denials, where to send the user.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Guard holds the redirect targets used by denials.
type Guard struct {
	login string
	home  string
}

// DefaultLogin and DefaultHome are the redirect targets of the package-level
// Decide.
const (
	DefaultLogin = "login"
	DefaultHome  = "home"
)

// New returns a Guard redirecting unauthenticated users to login and
// forbidden users to home. Empty arguments fall back to the defaults.
func New(login, home string) Guard {
	if login == "" {
		login = DefaultLogin
	}
	if home == "" {
		home = DefaultHome
	}
	return Guard{login: login, home: home}
}

// Login returns the redirect target for unauthenticated users.
func (g Guard) Login() string { return g.login }

// Home returns the redirect target for forbidden users.
func (g Guard) Home() string { return g.home }

// Decide evaluates s against req.
func (g Guard) Decide(s session.Session, req Requirement) Decision {
	if !s.Ready {
		return Decision{Outcome: Pending}
	}
	r, ok := s.Role()
	if !s.Authenticated || !ok {
		return Decision{Outcome: DenyUnauthenticated, Redirect: g.login}
	}
	if req.Open || req.Roles.Has(r) {
		return Decision{Outcome: Allow}
	}
	return Decision{Outcome: DenyForbidden, Redirect: g.home}
}

var defaultGuard = New(DefaultLogin, DefaultHome)

// Decide evaluates s against req with the default redirect targets.
func Decide(s session.Session, req Requirement) Decision {
	return defaultGuard.Decide(s, req)
}
