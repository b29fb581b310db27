package role

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a name is not one of the seven known roles.
var ErrUnknownRole = errors.New("unknown role")

// Role is one member of the closed role enumeration.
type Role string

const (
	Superadmin Role = "superadmin"
	Admin      Role = "admin"
	Moderator  Role = "moderator"
	Editor     Role = "editor"
	Viewer     Role = "viewer"
	User       Role = "user"
	Guest      Role = "guest"
)

// Canonical order. Bit positions in a Set follow this order and must stay
// stable because sets are compared by raw value.
var all = [...]Role{Superadmin, Admin, Moderator, Editor, Viewer, User, Guest}

// All returns every known role in canonical order.
func All() []Role {
	out := make([]Role, len(all))
	copy(out, all[:])
	return out
}

// Parse maps a role name to a Role. Surrounding whitespace is ignored; the
// comparison is otherwise exact.
func Parse(name string) (Role, error) {
	r := Role(strings.TrimSpace(name))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.bit() >= 0
}

func (r Role) String() string {
	return string(r)
}

func (r Role) bit() int {
	for i, known := range all {
		if known == r {
			return i
		}
	}
	return -1
}
