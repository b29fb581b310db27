package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/policy"
	"github.com/MrEthical07/goGate/role"
	"github.com/gin-gonic/gin"
)

func newRouter(g *goGate.Gate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/admin", GinGuard(g, policy.AdminPanel), func(c *gin.Context) {
		s, ok := SessionFromGin(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, s.Username())
	})
	r.NoRoute(GinGuardPath(g), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestGinGuardAllow(t *testing.T) {
	r := newRouter(readyGate(t, role.Admin))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "admin" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestGinGuardRedirects(t *testing.T) {
	tests := []struct {
		name     string
		role     role.Role
		location string
	}{
		{"anonymous", "", "/login"},
		{"editor", role.Editor, "/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(readyGate(t, tc.role))

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
			if rr.Code != http.StatusFound {
				t.Fatalf("status = %d", rr.Code)
			}
			if got := rr.Header().Get("Location"); got != tc.location {
				t.Fatalf("Location = %q, want %q", got, tc.location)
			}
		})
	}
}

func TestGinGuardPending(t *testing.T) {
	r := newRouter(newGate(t))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatalf("Retry-After missing")
	}
}

func TestGinGuardPathFallback(t *testing.T) {
	r := newRouter(readyGate(t, role.User))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("public status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports", nil))
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("reports status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
}
