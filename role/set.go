package role

import (
	"math/bits"
	"strings"
)

// Set is a bitmask over the known roles. The zero value is the empty set.
type Set uint64

// NewSet builds a set from roles. Unknown roles are ignored; use ParseSet when
// the input comes from configuration.
func NewSet(roles ...Role) Set {
	var s Set
	for _, r := range roles {
		s.Add(r)
	}
	return s
}

// ParseSet builds a set from role names and rejects unknown names.
func ParseSet(names []string) (Set, error) {
	var s Set
	for _, name := range names {
		r, err := Parse(name)
		if err != nil {
			return 0, err
		}
		s.Add(r)
	}
	return s, nil
}

// Has reports whether r is a member. Unknown roles are never members.
func (s Set) Has(r Role) bool {
	bit := r.bit()
	if bit < 0 {
		return false
	}
	return s&(1<<uint(bit)) != 0
}

func (s *Set) Add(r Role) {
	bit := r.bit()
	if bit < 0 {
		return
	}
	*s |= 1 << uint(bit)
}

func (s *Set) Remove(r Role) {
	bit := r.bit()
	if bit < 0 {
		return
	}
	*s &^= 1 << uint(bit)
}

// Len returns the number of members.
func (s Set) Len() int {
	return bits.OnesCount64(uint64(s))
}

func (s Set) Empty() bool {
	return s == 0
}

// Roles lists the members in canonical order.
func (s Set) Roles() []Role {
	out := make([]Role, 0, s.Len())
	for _, r := range all {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Raw exposes the underlying mask.
func (s Set) Raw() uint64 {
	return uint64(s)
}

func (s Set) String() string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}
