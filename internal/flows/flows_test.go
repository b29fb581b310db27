package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/persist"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

const (
	mRestored = iota
	mEmpty
	mRejected
	mCorrupt
	mLoginOK
	mLoginRejected
	mLogout
	mSwitch
	mAllow
	mDenyUnauth
	mDenyForbidden
	mPending
	mCount
)

type recorder struct {
	counts [mCount]int
	events []string
}

func (r *recorder) inc(id int) { r.counts[id]++ }

func (r *recorder) audit(_ context.Context, eventType string, _ bool, _ Subject, _ error, metadata func() map[string]string) {
	if metadata != nil {
		_ = metadata()
	}
	r.events = append(r.events, eventType)
}

type fixture struct {
	storage *persist.MemoryStorage
	adapter *persist.Adapter
	store   *session.Store
	rec     *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	storage := persist.NewMemoryStorage()
	adapter, err := persist.NewAdapter(storage, "", nil)
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}
	return &fixture{
		storage: storage,
		adapter: adapter,
		store:   session.NewStore(adapter, nil),
		rec:     &recorder{},
	}
}

func (f *fixture) bootstrapDeps() BootstrapDeps {
	return BootstrapDeps{
		Load:             f.adapter.LoadDetailed,
		Login:            f.store.Login,
		MarkBootstrapped: f.store.MarkBootstrapped,
		MetricInc:        f.rec.inc,
		EmitAudit:        f.rec.audit,
		Metrics:          BootstrapMetrics{Restored: mRestored, Empty: mEmpty, Rejected: mRejected, Corrupt: mCorrupt},
		Event:            "bootstrap",
	}
}

var errPersist = errors.New("persist failed")

func (f *fixture) loginDeps() LoginDeps {
	return LoginDeps{
		Save:      f.adapter.Save,
		Login:     f.store.Login,
		MetricInc: f.rec.inc,
		EmitAudit: f.rec.audit,
		Metrics:   LoginMetrics{LoginSuccess: mLoginOK, LoginRejected: mLoginRejected},
		Events:    LoginEvents{Login: "login", LoginRejected: "login_rejected"},
		Errors:    LoginErrors{NotReady: errors.New("not ready"), PersistFail: errPersist},
	}
}

var editor = session.UserIdentity{Username: "eve", Name: "Eve Editor", Role: role.Editor}

func TestBootstrapRestoresPersistedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.adapter.Save(ctx, editor, "tok"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	res := RunBootstrap(ctx, f.bootstrapDeps())
	if !res.Restored || res.Reason != ReasonRestored || res.Username != "eve" {
		t.Fatalf("unexpected result: %+v", res)
	}
	s := f.store.Snapshot()
	if !s.Ready || !s.Authenticated || s.Token != "tok" || *s.User != editor {
		t.Fatalf("unexpected session: %+v", s)
	}
	if f.rec.counts[mRestored] != 1 {
		t.Fatalf("restored metric = %d", f.rec.counts[mRestored])
	}
}

func TestBootstrapEmpty(t *testing.T) {
	f := newFixture(t)
	res := RunBootstrap(context.Background(), f.bootstrapDeps())
	if res.Restored || res.Reason != ReasonEmpty {
		t.Fatalf("unexpected result: %+v", res)
	}
	s := f.store.Snapshot()
	if !s.Ready || s.Authenticated {
		t.Fatalf("expected ready and signed out, got %+v", s)
	}
	if f.rec.counts[mEmpty] != 1 || len(f.rec.events) != 1 || f.rec.events[0] != "bootstrap" {
		t.Fatalf("unexpected observations: %+v", f.rec)
	}
}

func TestBootstrapCorruptUserIsSignedOutNotCrash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk, uk := f.adapter.Keys()
	_ = f.storage.Set(ctx, tk, "tok")
	_ = f.storage.Set(ctx, uk, "{\"username\": \"eve\", \"role\": ")

	res := RunBootstrap(ctx, f.bootstrapDeps())
	if res.Restored || res.Reason != ReasonCorrupt {
		t.Fatalf("unexpected result: %+v", res)
	}
	s := f.store.Snapshot()
	if !s.Ready || s.Authenticated || s.User != nil || s.Token != "" {
		t.Fatalf("expected {ready, signed out}, got %+v", s)
	}
	if f.rec.counts[mCorrupt] != 1 {
		t.Fatalf("corrupt metric = %d", f.rec.counts[mCorrupt])
	}
}

func TestBootstrapRejectedLoginStillReady(t *testing.T) {
	f := newFixture(t)
	deps := f.bootstrapDeps()
	deps.Load = func(context.Context) (persist.Snapshot, persist.LoadStatus) {
		return persist.Snapshot{Token: "", User: editor}, persist.StatusRestored
	}

	res := RunBootstrap(context.Background(), deps)
	if res.Restored || res.Reason != ReasonRejected {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s := f.store.Snapshot(); !s.Ready || s.Authenticated {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestBootstrapSurvivesPanickingLoad(t *testing.T) {
	f := newFixture(t)
	deps := f.bootstrapDeps()
	deps.Load = func(context.Context) (persist.Snapshot, persist.LoadStatus) {
		panic("driver bug")
	}

	res := RunBootstrap(context.Background(), deps)
	if res.Reason != ReasonCorrupt {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !f.store.IsReady() {
		t.Fatal("store must be ready after a panicking load")
	}
}

func TestRunLoginPersistsAndStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := RunLogin(ctx, editor, "tok", f.loginDeps()); err != nil {
		t.Fatalf("RunLogin failed: %v", err)
	}
	if snap, ok := f.adapter.Load(ctx); !ok || snap.User != editor {
		t.Fatalf("expected persisted snapshot, got %+v ok=%v", snap, ok)
	}
	if s := f.store.Snapshot(); !s.Authenticated || s.Token != "tok" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if f.rec.counts[mLoginOK] != 1 {
		t.Fatalf("login metric = %d", f.rec.counts[mLoginOK])
	}
}

func TestRunLoginRejectsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := []struct {
		user  session.UserIdentity
		token string
		want  error
	}{
		{session.UserIdentity{Role: role.Admin}, "tok", session.ErrInvalidIdentity},
		{session.UserIdentity{Username: "x", Role: "root"}, "tok", session.ErrInvalidIdentity},
		{editor, "", session.ErrEmptyToken},
	}
	for _, b := range bad {
		if err := RunLogin(ctx, b.user, b.token, f.loginDeps()); !errors.Is(err, b.want) {
			t.Fatalf("expected %v, got %v", b.want, err)
		}
	}
	if f.storage.Len() != 0 {
		t.Fatal("rejected login must not persist")
	}
	if f.store.Snapshot().Authenticated {
		t.Fatal("rejected login must not authenticate")
	}
	if f.rec.counts[mLoginRejected] != len(bad) {
		t.Fatalf("rejected metric = %d", f.rec.counts[mLoginRejected])
	}
}

func TestRunLoginPersistFailureStillSignsIn(t *testing.T) {
	f := newFixture(t)
	deps := f.loginDeps()
	deps.Save = func(context.Context, session.UserIdentity, string) error {
		return persist.ErrStorageUnavailable
	}

	err := RunLogin(context.Background(), editor, "tok", deps)
	if !errors.Is(err, errPersist) || !errors.Is(err, persist.ErrStorageUnavailable) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if !f.store.Snapshot().Authenticated {
		t.Fatal("in-memory login should still happen")
	}
}

func TestRunLoginNotReady(t *testing.T) {
	want := errors.New("not ready")
	if err := RunLogin(context.Background(), editor, "tok", LoginDeps{Errors: LoginErrors{NotReady: want}}); err != want {
		t.Fatalf("expected not ready, got %v", err)
	}
}

func TestRunPasswordLogin(t *testing.T) {
	f := newFixture(t)
	deps := f.loginDeps()
	badCreds := errors.New("invalid credentials")
	deps.Authenticate = func(_ context.Context, username, password string) (session.UserIdentity, string, error) {
		if username == "eve" && password == "eve" {
			return editor, "jwt", nil
		}
		return session.UserIdentity{}, "", badCreds
	}

	if _, err := RunPasswordLogin(context.Background(), "eve", "nope", deps); !errors.Is(err, badCreds) {
		t.Fatalf("expected bad credentials, got %v", err)
	}
	if f.store.Snapshot().Authenticated {
		t.Fatal("failed authentication must not sign in")
	}

	user, err := RunPasswordLogin(context.Background(), "eve", "eve", deps)
	if err != nil {
		t.Fatalf("RunPasswordLogin failed: %v", err)
	}
	if user != editor || f.store.Snapshot().Token != "jwt" {
		t.Fatalf("unexpected result: %+v %+v", user, f.store.Snapshot())
	}
	if got := f.rec.events; len(got) != 2 || got[0] != "login_rejected" || got[1] != "login" {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestRunLogoutClearsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := RunLogin(ctx, editor, "tok", f.loginDeps()); err != nil {
		t.Fatalf("RunLogin failed: %v", err)
	}

	deps := LogoutDeps{
		Snapshot:  f.store.Snapshot,
		Logout:    f.store.Logout,
		MetricInc: f.rec.inc,
		EmitAudit: f.rec.audit,
		Metric:    mLogout,
		Event:     "logout",
	}
	RunLogout(ctx, deps)
	RunLogout(ctx, deps)

	if f.store.Snapshot().Authenticated {
		t.Fatal("expected signed out")
	}
	if _, ok := f.adapter.Load(ctx); ok {
		t.Fatal("expected persisted snapshot erased")
	}
	if f.rec.counts[mLogout] != 2 {
		t.Fatalf("logout metric = %d", f.rec.counts[mLogout])
	}
}

func TestRunSwitchRole(t *testing.T) {
	errDisabled := errors.New("dev disabled")
	errNoUser := errors.New("not authenticated")

	f := newFixture(t)
	deps := SwitchRoleDeps{
		Enabled:   true,
		Snapshot:  f.store.Snapshot,
		Login:     f.store.Login,
		MetricInc: f.rec.inc,
		EmitAudit: f.rec.audit,
		Metric:    mSwitch,
		Event:     "role_switch",
		Errors:    SwitchRoleErrors{DevModeDisabled: errDisabled, NotAuthenticated: errNoUser},
	}
	ctx := context.Background()

	if _, err := RunSwitchRole(ctx, role.Viewer, deps); !errors.Is(err, errNoUser) {
		t.Fatalf("expected not authenticated, got %v", err)
	}

	if err := RunLogin(ctx, editor, "tok", f.loginDeps()); err != nil {
		t.Fatalf("RunLogin failed: %v", err)
	}
	if _, err := RunSwitchRole(ctx, role.Role("root"), deps); !errors.Is(err, role.ErrUnknownRole) {
		t.Fatalf("expected unknown role, got %v", err)
	}

	user, err := RunSwitchRole(ctx, role.Viewer, deps)
	if err != nil {
		t.Fatalf("RunSwitchRole failed: %v", err)
	}
	s := f.store.Snapshot()
	if user.Role != role.Viewer || s.User.Role != role.Viewer || s.Token != "dev-token-viewer" {
		t.Fatalf("unexpected session after switch: %+v", s)
	}
	if s.User.Name != editor.Name {
		t.Fatalf("switch must keep the rest of the identity, got %+v", s.User)
	}
	if f.rec.counts[mSwitch] != 1 {
		t.Fatalf("switch metric = %d", f.rec.counts[mSwitch])
	}

	stored, ok := f.adapter.Load(ctx)
	if !ok || stored.User.Role != role.Editor || stored.Token != "tok" {
		t.Fatalf("switch must not reach storage, got %+v ok=%v", stored, ok)
	}

	deps.Enabled = false
	if _, err := RunSwitchRole(ctx, role.Admin, deps); !errors.Is(err, errDisabled) {
		t.Fatalf("expected dev mode disabled, got %v", err)
	}
}

func TestRunDecide(t *testing.T) {
	tbl := policy.Reference()
	rec := &recorder{}
	deps := DecideDeps{
		Guard:       guard.New(string(tbl.Login()), string(tbl.Home())),
		Rule:        tbl.Rule,
		AuditDenied: true,
		MetricInc:   rec.inc,
		EmitAudit:   rec.audit,
		Metrics: DecideMetrics{
			Allow: mAllow, DenyUnauthenticated: mDenyUnauth, DenyForbidden: mDenyForbidden, Pending: mPending,
		},
		Event: "guard_denied",
	}
	ctx := context.Background()

	notReady := session.Session{}
	anon := session.Session{Ready: true}
	ed := session.Session{Ready: true, Authenticated: true, User: &editor, Token: "t"}

	tests := []struct {
		name string
		s    session.Session
		dest policy.Destination
		want guard.Outcome
		to   string
	}{
		{"public before ready", notReady, policy.PublicInfo, guard.Pending, ""},
		{"restricted before ready", notReady, policy.AdminPanel, guard.Pending, ""},
		{"public anonymous", anon, policy.Home, guard.Allow, ""},
		{"restricted anonymous", anon, policy.Dashboard, guard.DenyUnauthenticated, "login"},
		{"editor admin", ed, policy.AdminPanel, guard.DenyForbidden, "home"},
		{"editor content", ed, policy.Content, guard.Allow, ""},
		{"editor public", ed, policy.Login, guard.Allow, ""},
		{"editor unlisted", ed, "changelog", guard.Allow, ""},
		{"anonymous unlisted", anon, "changelog", guard.DenyUnauthenticated, "login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RunDecide(ctx, tt.s, tt.dest, deps)
			if d.Outcome != tt.want || d.Redirect != tt.to {
				t.Fatalf("got %s -> %q, want %s -> %q", d.Outcome, d.Redirect, tt.want, tt.to)
			}
		})
	}

	if rec.counts[mPending] != 2 || rec.counts[mAllow] != 4 || rec.counts[mDenyUnauth] != 2 || rec.counts[mDenyForbidden] != 1 {
		t.Fatalf("unexpected outcome counts: %v", rec.counts)
	}
	if len(rec.events) != 3 {
		t.Fatalf("expected 3 denial events, got %v", rec.events)
	}
}
