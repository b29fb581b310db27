package policy

import (
	"fmt"
	"io"
	"os"

	"github.com/MrEthical07/goGate/role"
	"gopkg.in/yaml.v3"
)

type document struct {
	Home         string             `yaml:"home"`
	Login        string             `yaml:"login"`
	Landing      string             `yaml:"landing"`
	Fallback     string             `yaml:"fallback"`
	Destinations []destinationDoc   `yaml:"destinations"`
	Navigation   navigationDocument `yaml:"navigation"`
}

type destinationDoc struct {
	ID    string   `yaml:"id"`
	Path  string   `yaml:"path"`
	Mode  string   `yaml:"mode"`
	Roles []string `yaml:"roles,omitempty"`
}

type navigationDocument struct {
	Anonymous []string            `yaml:"anonymous"`
	Roles     map[string][]string `yaml:"roles,omitempty"`
}

// Load reads a YAML policy document. Unknown roles, modes and fields are
// rejected.
func Load(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidPolicy, err)
	}
	def, err := doc.definition()
	if err != nil {
		return nil, err
	}
	return New(def)
}

// LoadFile reads a YAML policy document from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("policy: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Encode writes t as a YAML document accepted by Load.
func Encode(w io.Writer, t *Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(documentOf(t.Definition())); err != nil {
		return err
	}
	return enc.Close()
}

func (doc document) definition() (Definition, error) {
	fallback := ModeAuthenticated
	if doc.Fallback != "" {
		m, err := ParseMode(doc.Fallback)
		if err != nil {
			return Definition{}, err
		}
		fallback = m
	}

	def := Definition{
		Home:     Destination(doc.Home),
		Login:    Destination(doc.Login),
		Landing:  Destination(doc.Landing),
		Fallback: fallback,
		Rules:    make([]Rule, 0, len(doc.Destinations)),
		Nav: NavConfig{
			Anonymous: toDestinations(doc.Navigation.Anonymous),
			ByRole:    make(map[role.Role][]Destination, len(doc.Navigation.Roles)),
		},
	}
	if def.Home == "" {
		def.Home = Home
	}
	if def.Login == "" {
		def.Login = Login
	}
	if def.Landing == "" {
		def.Landing = def.Home
	}

	for _, d := range doc.Destinations {
		mode, err := ParseMode(d.Mode)
		if err != nil {
			return Definition{}, fmt.Errorf("destination %q: %w", d.ID, err)
		}
		roles, err := role.ParseSet(d.Roles)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: destination %q: %v", ErrInvalidPolicy, d.ID, err)
		}
		def.Rules = append(def.Rules, Rule{
			Destination: Destination(d.ID),
			Path:        d.Path,
			Mode:        mode,
			Roles:       roles,
		})
	}

	for name, dests := range doc.Navigation.Roles {
		r, err := role.Parse(name)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: navigation: %v", ErrInvalidPolicy, err)
		}
		def.Nav.ByRole[r] = toDestinations(dests)
	}
	return def, nil
}

func documentOf(def Definition) document {
	doc := document{
		Home:         string(def.Home),
		Login:        string(def.Login),
		Landing:      string(def.Landing),
		Fallback:     def.Fallback.String(),
		Destinations: make([]destinationDoc, 0, len(def.Rules)),
		Navigation: navigationDocument{
			Anonymous: fromDestinations(def.Nav.Anonymous),
			Roles:     make(map[string][]string, len(def.Nav.ByRole)),
		},
	}
	for _, r := range def.Rules {
		d := destinationDoc{ID: string(r.Destination), Path: r.Path, Mode: r.Mode.String()}
		for _, ro := range r.Roles.Roles() {
			d.Roles = append(d.Roles, ro.String())
		}
		doc.Destinations = append(doc.Destinations, d)
	}
	for r, dests := range def.Nav.ByRole {
		doc.Navigation.Roles[r.String()] = fromDestinations(dests)
	}
	return doc
}

func toDestinations(names []string) []Destination {
	out := make([]Destination, 0, len(names))
	for _, n := range names {
		out = append(out, Destination(n))
	}
	return out
}

func fromDestinations(dests []Destination) []string {
	out := make([]string, 0, len(dests))
	for _, d := range dests {
		out = append(out, string(d))
	}
	return out
}
