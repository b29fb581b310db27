package devauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/authclient"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/role"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newService(t *testing.T, withRedis bool) *Service {
	t.Helper()

	var client redis.UniversalClient
	if withRedis {
		mr := miniredis.RunT(t)
		c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = c.Close() })
		client = c
	}
	cfg := DefaultConfig(testSecret)
	cfg.Rate = rate.Config{MaxFailures: 3, Window: time.Minute}
	s, err := New(cfg, client, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(DefaultHashConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	enc, err := h.Hash("admin")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(enc, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", enc)
	}
	if ok, err := h.Verify("admin", enc); err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, err := h.Verify("Admin", enc); err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v", ok, err)
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h, _ := NewHasher(DefaultHashConfig())
	for _, enc := range []string{
		"",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2hvcnQ$aGFzaA",
	} {
		if _, err := h.Verify("x", enc); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("Verify(%q) expected ErrInvalidHash, got %v", enc, err)
		}
	}
}

func TestNewHasherValidates(t *testing.T) {
	cfg := DefaultHashConfig()
	cfg.SaltLength = 8
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected short salt to be rejected")
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens(TokenConfig{Secret: testSecret, TTL: time.Minute, Issuer: "test"})
	if err != nil {
		t.Fatalf("NewTokens error: %v", err)
	}
	in := TestUsers()[0]
	tok, err := tokens.Issue(in)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	u, claims, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if u.Username != in.Username || u.Role != in.Role || u.Name != in.Name {
		t.Fatalf("unexpected identity: %+v", u)
	}
	if claims.ID == "" {
		t.Fatal("expected jti")
	}
}

func TestTokensRejectTampering(t *testing.T) {
	tokens, _ := NewTokens(TokenConfig{Secret: testSecret, TTL: time.Minute})
	other, _ := NewTokens(TokenConfig{Secret: []byte("another-secret-another-secret"), TTL: time.Minute})

	tok, _ := other.Issue(TestUsers()[0])
	if _, _, err := tokens.Parse(tok); err == nil {
		t.Fatal("expected foreign signature to be rejected")
	}

	claims := Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "admin", IssuedAt: jwt.NewNumericDate(time.Now())}}
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, _, err := tokens.Parse(none); err == nil {
		t.Fatal("expected alg=none to be rejected")
	}
}

func TestTokensExpire(t *testing.T) {
	tokens, _ := NewTokens(TokenConfig{Secret: testSecret, TTL: time.Minute})
	tok, _ := tokens.Issue(TestUsers()[0])

	tokens.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, _, err := tokens.Parse(tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLoginAllTestUsers(t *testing.T) {
	s := newService(t, false)
	for _, want := range TestUsers() {
		u, tok, err := s.Login(context.Background(), want.Username, want.Username, "")
		if err != nil {
			t.Fatalf("Login(%s) failed: %v", want.Username, err)
		}
		if u != want || tok == "" {
			t.Fatalf("Login(%s) = %+v %q", want.Username, u, tok)
		}
	}
	if len(TestUsers()) != len(role.All()) {
		t.Fatalf("expected one test user per role")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newService(t, false)
	for _, tc := range [][2]string{{"admin", "wrong"}, {"nobody", "nobody"}, {"admin", ""}} {
		if _, _, err := s.Login(context.Background(), tc[0], tc[1], ""); !errors.Is(err, goGate.ErrInvalidCredentials) {
			t.Fatalf("Login(%q,%q) expected ErrInvalidCredentials, got %v", tc[0], tc[1], err)
		}
	}
}

func TestLoginThrottle(t *testing.T) {
	s := newService(t, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := s.Login(ctx, "admin", "bad", ""); !errors.Is(err, goGate.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if _, _, err := s.Login(ctx, "admin", "admin", ""); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
	if _, _, err := s.Login(ctx, "editor", "editor", ""); err != nil {
		t.Fatalf("other users must still sign in: %v", err)
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService(t, false)
	h := s.Handler()

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, body string)
	}{
		{"ok", `{"username":"moderator","password":"moderator"}`, http.StatusOK, func(t *testing.T, body string) {
			if gjson.Get(body, "user.role").String() != "moderator" || gjson.Get(body, "token").String() == "" {
				t.Fatalf("unexpected body: %s", body)
			}
		}},
		{"wrong password", `{"username":"admin","password":"x"}`, http.StatusUnauthorized, func(t *testing.T, body string) {
			if gjson.Get(body, "message").String() != "Invalid credentials" {
				t.Fatalf("unexpected body: %s", body)
			}
		}},
		{"bad json", `{`, http.StatusBadRequest, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, LoginPath, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			h.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			if tc.check != nil {
				tc.check(t, rr.Body.String())
			}
		})
	}
}

func TestGateAgainstDevServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService(t, false)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	g, err := goGate.New().WithAuthenticator(authclient.New(srv.URL + "/api")).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(g.Close)
	ctx := context.Background()
	g.Bootstrap(ctx)

	if _, err := g.LoginWithPassword(ctx, "viewer", "wrong"); !errors.Is(err, goGate.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := g.LoginWithPassword(ctx, "viewer", "viewer"); err != nil {
		t.Fatalf("LoginWithPassword failed: %v", err)
	}
	if got := g.Decide(ctx, policy.Reports); got.Outcome != goGate.Allow {
		t.Fatalf("viewer should see reports, got %s", got.Outcome)
	}
	u, _, err := s.Tokens().Parse(g.Session().Token)
	if err != nil || u.Username != "viewer" {
		t.Fatalf("issued token does not parse: %v %+v", err, u)
	}
}
