package policy

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

// Destination identifies a screen independently of its URL.
type Destination string

// Rule is the access rule and location of one destination.
type Rule struct {
	Destination Destination
	Path        string
	Mode        Mode
	Roles       role.Set
}

// Requirement converts the rule into the guard's input. Public rules are
// resolved by the caller before the guard runs; here they behave as open.
func (r Rule) Requirement() guard.Requirement {
	if r.Mode == ModeRestricted {
		return guard.Requirement{Roles: r.Roles}
	}
	return guard.AnyAuthenticated()
}

// Permits reports whether a signed-in user with role ro may enter.
func (r Rule) Permits(ro role.Role) bool {
	switch r.Mode {
	case ModePublic, ModeAuthenticated:
		return true
	case ModeRestricted:
		return r.Roles.Has(ro)
	default:
		return false
	}
}

// NavConfig lists, in display order, the links shown to signed-out visitors
// and to each role. A role absent from ByRole sees no links.
type NavConfig struct {
	Anonymous []Destination
	ByRole    map[role.Role][]Destination
}

// Definition is the input to New.
type Definition struct {
	// Home receives forbidden users. Login receives signed-out users.
	Home  Destination
	Login Destination
	// Landing is the brand link target for signed-in users.
	Landing Destination
	// Fallback applies to destinations with no rule: ModePublic or
	// ModeAuthenticated.
	Fallback Mode
	Rules    []Rule
	Nav      NavConfig
}

// Link is a navigation entry.
type Link struct {
	Destination Destination
	Path        string
}

// Table is a validated, read-only policy.
type Table struct {
	home, login, landing Destination
	fallback             Mode

	order []Destination
	rules map[Destination]Rule
	paths map[string]Destination

	anonymous []Link
	byRole    map[role.Role][]Link
}

// New validates def and builds a Table. def is copied.
func New(def Definition) (*Table, error) {
	if def.Fallback != ModePublic && def.Fallback != ModeAuthenticated {
		return nil, fmt.Errorf("%w: fallback must be public or authenticated, got %s", ErrInvalidPolicy, def.Fallback)
	}

	t := &Table{
		home:     def.Home,
		login:    def.Login,
		landing:  def.Landing,
		fallback: def.Fallback,
		rules:    make(map[Destination]Rule, len(def.Rules)),
		paths:    make(map[string]Destination, len(def.Rules)),
		byRole:   make(map[role.Role][]Link, len(def.Nav.ByRole)),
	}

	for _, r := range def.Rules {
		if r.Destination == "" {
			return nil, fmt.Errorf("%w: rule with empty destination", ErrInvalidPolicy)
		}
		if _, dup := t.rules[r.Destination]; dup {
			return nil, fmt.Errorf("%w: duplicate destination %q", ErrInvalidPolicy, r.Destination)
		}
		if !r.Mode.valid() {
			return nil, fmt.Errorf("%w: destination %q has invalid mode", ErrInvalidPolicy, r.Destination)
		}
		if r.Mode != ModeRestricted && !r.Roles.Empty() {
			return nil, fmt.Errorf("%w: destination %q lists roles but is %s", ErrInvalidPolicy, r.Destination, r.Mode)
		}
		p := normalizePath(r.Path)
		if p == "" || !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("%w: destination %q needs an absolute path", ErrInvalidPolicy, r.Destination)
		}
		if other, dup := t.paths[p]; dup {
			return nil, fmt.Errorf("%w: path %q used by %q and %q", ErrInvalidPolicy, p, other, r.Destination)
		}
		r.Path = p
		t.rules[r.Destination] = r
		t.paths[p] = r.Destination
		t.order = append(t.order, r.Destination)
	}

	for name, d := range map[string]Destination{"home": def.Home, "login": def.Login} {
		r, ok := t.rules[d]
		if !ok {
			return nil, fmt.Errorf("%w: %s destination %q is not defined", ErrInvalidPolicy, name, d)
		}
		if r.Mode != ModePublic {
			return nil, fmt.Errorf("%w: %s destination %q must be public", ErrInvalidPolicy, name, d)
		}
	}
	if _, ok := t.rules[def.Landing]; !ok {
		return nil, fmt.Errorf("%w: landing destination %q is not defined", ErrInvalidPolicy, def.Landing)
	}

	anon, err := t.links(def.Nav.Anonymous, func(r Rule) bool { return r.Mode == ModePublic })
	if err != nil {
		return nil, fmt.Errorf("anonymous navigation: %w", err)
	}
	t.anonymous = anon

	for ro, dests := range def.Nav.ByRole {
		if !ro.Valid() {
			return nil, fmt.Errorf("%w: navigation for unknown role %q", ErrInvalidPolicy, ro)
		}
		links, err := t.links(dests, func(r Rule) bool { return r.Permits(ro) })
		if err != nil {
			return nil, fmt.Errorf("%s navigation: %w", ro, err)
		}
		t.byRole[ro] = links
	}
	return t, nil
}

func (t *Table) links(dests []Destination, visible func(Rule) bool) ([]Link, error) {
	out := make([]Link, 0, len(dests))
	seen := make(map[Destination]struct{}, len(dests))
	for _, d := range dests {
		r, ok := t.rules[d]
		if !ok {
			return nil, fmt.Errorf("%w: link to undefined destination %q", ErrInvalidPolicy, d)
		}
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("%w: duplicate link %q", ErrInvalidPolicy, d)
		}
		if !visible(r) {
			return nil, fmt.Errorf("%w: link %q leads to a destination it cannot enter", ErrInvalidPolicy, d)
		}
		seen[d] = struct{}{}
		out = append(out, Link{Destination: d, Path: r.Path})
	}
	return out, nil
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

// Home returns the destination forbidden users are sent to.
func (t *Table) Home() Destination { return t.home }

// Login returns the destination signed-out users are sent to.
func (t *Table) Login() Destination { return t.login }

// Landing returns where a fresh sign-in goes.
func (t *Table) Landing() Destination { return t.landing }

// Fallback returns the mode applied to unlisted destinations.
func (t *Table) Fallback() Mode { return t.fallback }

// Destinations returns every listed destination in definition order.
func (t *Table) Destinations() []Destination {
	return append([]Destination(nil), t.order...)
}

// Lookup returns the explicit rule for d.
func (t *Table) Lookup(d Destination) (Rule, bool) {
	r, ok := t.rules[d]
	return r, ok
}

// Rule returns the rule for d, falling back to the table default for
// unlisted destinations. The fallback rule has no path.
func (t *Table) Rule(d Destination) Rule {
	if r, ok := t.rules[d]; ok {
		return r
	}
	return Rule{Destination: d, Mode: t.fallback}
}

// Requirement returns the guard requirement for d.
func (t *Table) Requirement(d Destination) guard.Requirement {
	return t.Rule(d).Requirement()
}

// Resolve maps a URL path to its destination. Trailing slashes are ignored.
func (t *Table) Resolve(path string) (Destination, bool) {
	d, ok := t.paths[normalizePath(path)]
	return d, ok
}

// Path maps a destination to its URL path.
func (t *Table) Path(d Destination) (string, error) {
	r, ok := t.rules[d]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDestination, d)
	}
	return r.Path, nil
}

// Links returns the navigation links visible to s, in display order.
func (t *Table) Links(s session.Session) []Link {
	if r, ok := s.Role(); ok {
		return append([]Link(nil), t.byRole[r]...)
	}
	return append([]Link(nil), t.anonymous...)
}

// Brand returns the brand link target: landing when signed in, home otherwise.
func (t *Table) Brand(s session.Session) Link {
	d := t.home
	if _, ok := s.Role(); ok {
		d = t.landing
	}
	return Link{Destination: d, Path: t.rules[d].Path}
}

// Definition returns a copy of the input the table was built from.
func (t *Table) Definition() Definition {
	def := Definition{
		Home:     t.home,
		Login:    t.login,
		Landing:  t.landing,
		Fallback: t.fallback,
		Rules:    make([]Rule, 0, len(t.order)),
		Nav:      NavConfig{ByRole: make(map[role.Role][]Destination, len(t.byRole))},
	}
	for _, d := range t.order {
		def.Rules = append(def.Rules, t.rules[d])
	}
	def.Nav.Anonymous = destinationsOf(t.anonymous)
	for r, links := range t.byRole {
		def.Nav.ByRole[r] = destinationsOf(links)
	}
	return def
}

func destinationsOf(links []Link) []Destination {
	out := make([]Destination, 0, len(links))
	for _, l := range links {
		out = append(out, l.Destination)
	}
	return out
}
