package policy

import (
	"fmt"
	"strings"
)

// Mode is the access class of a destination.
type Mode uint8

const (
	// ModePublic is open to everyone, signed in or not.
	ModePublic Mode = iota + 1
	// ModeAuthenticated admits any signed-in user.
	ModeAuthenticated
	// ModeRestricted admits only the listed roles. An empty list admits nobody.
	ModeRestricted
)

func (m Mode) String() string {
	switch m {
	case ModePublic:
		return "public"
	case ModeAuthenticated:
		return "authenticated"
	case ModeRestricted:
		return "restricted"
	default:
		return "invalid"
	}
}

// ParseMode accepts the names produced by String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return ModePublic, nil
	case "authenticated":
		return ModeAuthenticated, nil
	case "restricted":
		return ModeRestricted, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidPolicy, s)
	}
}

func (m Mode) valid() bool {
	return m >= ModePublic && m <= ModeRestricted
}
