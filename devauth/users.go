package devauth

import (
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

// TestUsers returns the seeded accounts in display order. Each password is
// the username.
func TestUsers() []session.UserIdentity {
	return []session.UserIdentity{
		{Username: "admin", Name: "Admin User", Email: "admin@example.com", Role: role.Admin},
		{Username: "user", Name: "Regular User", Email: "user@example.com", Role: role.User},
		{Username: "moderator", Name: "Moderator User", Email: "moderator@example.com", Role: role.Moderator},
		{Username: "superadmin", Name: "Super Admin", Email: "superadmin@example.com", Role: role.Superadmin},
		{Username: "editor", Name: "Editor User", Email: "editor@example.com", Role: role.Editor},
		{Username: "viewer", Name: "Viewer User", Email: "viewer@example.com", Role: role.Viewer},
		{Username: "guest", Name: "Guest User", Email: "guest@example.com", Role: role.Guest},
	}
}
