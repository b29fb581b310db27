package session

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MrEthical07/goGate/role"
)

// UserIdentity is the identity returned by the authentication service.
// Username and Role are required; Name and Email are display-only.
type UserIdentity struct {
	Username string
	Name     string
	Email    string
	Role     role.Role
}

// Validate checks the Login precondition.
func (u UserIdentity) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: username required", ErrInvalidIdentity)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: role %q", ErrInvalidIdentity, u.Role)
	}
	// Stored records are JSON; invalid UTF-8 would not survive a round trip.
	if !utf8.ValidString(u.Username) || !utf8.ValidString(u.Name) || !utf8.ValidString(u.Email) {
		return fmt.Errorf("%w: not valid utf-8", ErrInvalidIdentity)
	}
	return nil
}

// DisplayName returns Name, falling back to Username.
func (u UserIdentity) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Initials derives the avatar label: the first letters of the first two name
// parts, else the upper-cased first letter of the username, else "U".
func (u UserIdentity) Initials() string {
	if name := strings.Fields(u.Name); len(name) > 0 {
		out := firstRune(name[0])
		if len(name) > 1 {
			out += firstRune(name[1])
		}
		return out
	}
	if u.Username != "" {
		return strings.ToUpper(firstRune(u.Username))
	}
	return "U"
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// Session is a point-in-time copy of the client-side identity state.
//
// Authenticated implies User != nil and Token != "". Unauthenticated implies
// both are zero. Ready becomes true once, after bootstrap, and never reverts.
type Session struct {
	Authenticated bool
	User          *UserIdentity
	Token         string
	Ready         bool
}

// Role returns the role of the logged-in user. The boolean is false when no
// user is authenticated.
func (s Session) Role() (role.Role, bool) {
	if !s.Authenticated || s.User == nil {
		return "", false
	}
	return s.User.Role, true
}

// Username returns the username of the logged-in user, or "".
func (s Session) Username() string {
	if !s.Authenticated || s.User == nil {
		return ""
	}
	return s.User.Username
}

func (s Session) clone() Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
