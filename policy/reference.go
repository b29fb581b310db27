package policy

import "github.com/MrEthical07/goGate/role"

// Destinations of the reference dashboard.
const (
	Home           Destination = "home"
	Login          Destination = "login"
	PublicInfo     Destination = "public-info"
	Dashboard      Destination = "dashboard"
	AdminPanel     Destination = "admin-panel"
	ModeratorPanel Destination = "moderator-panel"
	Content        Destination = "content"
	UserManagement Destination = "user-management"
	Reports        Destination = "reports"
	Settings       Destination = "settings"
)

// ReferenceDefinition returns the built-in dashboard policy. Unlisted
// destinations require a signed-in user.
func ReferenceDefinition() Definition {
	restricted := func(d Destination, path string, roles ...role.Role) Rule {
		return Rule{Destination: d, Path: path, Mode: ModeRestricted, Roles: role.NewSet(roles...)}
	}
	public := func(d Destination, path string) Rule {
		return Rule{Destination: d, Path: path, Mode: ModePublic}
	}

	return Definition{
		Home:     Home,
		Login:    Login,
		Landing:  Dashboard,
		Fallback: ModeAuthenticated,
		Rules: []Rule{
			public(Home, "/"),
			public(Login, "/login"),
			public(PublicInfo, "/public"),
			restricted(Dashboard, "/dashboard",
				role.User, role.Admin, role.Moderator, role.Superadmin, role.Editor, role.Viewer),
			restricted(AdminPanel, "/admin", role.Admin, role.Superadmin),
			restricted(ModeratorPanel, "/moderator", role.Admin, role.Moderator, role.Superadmin),
			restricted(Content, "/content", role.Editor, role.Moderator, role.Admin, role.Superadmin),
			restricted(UserManagement, "/users", role.Superadmin),
			restricted(Reports, "/reports", role.Viewer, role.Superadmin),
			restricted(Settings, "/settings", role.Admin, role.Superadmin),
		},
		Nav: NavConfig{
			Anonymous: []Destination{Home, Login, PublicInfo},
			ByRole: map[role.Role][]Destination{
				role.Superadmin: {AdminPanel, ModeratorPanel, Content, UserManagement, Reports, Settings},
				role.Admin:      {AdminPanel, Content, Settings},
				role.Moderator:  {ModeratorPanel, Content},
				role.Editor:     {Content},
				role.Viewer:     {Reports},
			},
		},
	}
}

// Reference builds the built-in dashboard table.
func Reference() *Table {
	t, err := New(ReferenceDefinition())
	if err != nil {
		panic("policy: reference table invalid: " + err.Error())
	}
	return t
}
