package policy

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/MrEthical07/goGate/role"
)

func sameTable(t *testing.T, got, want *Table) {
	t.Helper()

	g, w := got.Definition(), want.Definition()
	if !reflect.DeepEqual(g.Rules, w.Rules) {
		t.Fatalf("rules differ:\n got %+v\nwant %+v", g.Rules, w.Rules)
	}
	if g.Home != w.Home || g.Login != w.Login || g.Landing != w.Landing || g.Fallback != w.Fallback {
		t.Fatalf("header differs: got %+v want %+v", g, w)
	}
	if !reflect.DeepEqual(g.Nav.Anonymous, w.Nav.Anonymous) {
		t.Fatalf("anonymous nav differs: %v vs %v", g.Nav.Anonymous, w.Nav.Anonymous)
	}
	for _, r := range role.All() {
		if !reflect.DeepEqual(g.Nav.ByRole[r], w.Nav.ByRole[r]) {
			t.Fatalf("%s nav differs: %v vs %v", r, g.Nav.ByRole[r], w.Nav.ByRole[r])
		}
	}
}

func TestLoadFileMatchesReference(t *testing.T) {
	tbl, err := LoadFile(filepath.Join("testdata", "reference.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	sameTable(t, tbl, Reference())
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Reference()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	tbl, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v\n%s", err, buf.String())
	}
	sameTable(t, tbl, Reference())
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown role": `
destinations:
  - {id: home, path: /, mode: public}
  - {id: login, path: /login, mode: public}
  - {id: vault, path: /vault, mode: restricted, roles: [root]}
`,
		"unknown mode": `
destinations:
  - {id: home, path: /, mode: hidden}
`,
		"unknown field": `
homepage: home
`,
		"unknown nav role": `
destinations:
  - {id: home, path: /, mode: public}
  - {id: login, path: /login, mode: public}
navigation:
  roles:
    root: [home]
`,
		"bad fallback": `
fallback: restricted
destinations:
  - {id: home, path: /, mode: public}
  - {id: login, path: /login, mode: public}
`,
		"not yaml": "\t- :",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(doc)); !errors.Is(err, ErrInvalidPolicy) {
				t.Fatalf("expected ErrInvalidPolicy, got %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	doc := `
destinations:
  - {id: home, path: /, mode: public}
  - {id: login, path: /login, mode: public}
`
	tbl, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.Home() != Home || tbl.Login() != Login || tbl.Fallback() != ModeAuthenticated {
		t.Fatalf("unexpected defaults: home=%s login=%s fallback=%s", tbl.Home(), tbl.Login(), tbl.Fallback())
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
