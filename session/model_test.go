package session

import (
	"testing"

	"github.com/MrEthical07/goGate/role"
)

func TestInitials(t *testing.T) {
	cases := []struct {
		user UserIdentity
		want string
	}{
		{UserIdentity{Name: "Ada Lovelace", Username: "ada"}, "AL"},
		{UserIdentity{Name: "plato", Username: "p"}, "p"},
		{UserIdentity{Name: "  ", Username: "moderator"}, "M"},
		{UserIdentity{Username: "viewer"}, "V"},
		{UserIdentity{}, "U"},
	}
	for _, tc := range cases {
		if got := tc.user.Initials(); got != tc.want {
			t.Fatalf("Initials(%+v) = %q, want %q", tc.user, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := (UserIdentity{Username: "admin"}).DisplayName(); got != "admin" {
		t.Fatalf("got %q", got)
	}
	if got := (UserIdentity{Username: "admin", Name: "Ada"}).DisplayName(); got != "Ada" {
		t.Fatalf("got %q", got)
	}
}

func TestSessionRoleAccessor(t *testing.T) {
	if _, ok := (Session{}).Role(); ok {
		t.Fatal("unauthenticated session has no role")
	}
	s := Session{Authenticated: true, User: &UserIdentity{Username: "e", Role: role.Editor}, Token: "t"}
	r, ok := s.Role()
	if !ok || r != role.Editor {
		t.Fatalf("expected editor, got %q %v", r, ok)
	}
	if s.Username() != "e" {
		t.Fatalf("unexpected username %q", s.Username())
	}
}
