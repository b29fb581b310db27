package middleware

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the allowed session snapshot.
const SessionKey = "gogate.session"

// GinGuard protects the following handlers with the rule for dest.
func GinGuard(gate *goGate.Gate, dest goGate.Destination) gin.HandlerFunc {
	return func(c *gin.Context) {
		ginServe(gate, dest, c)
	}
}

// GinGuardPath resolves the destination from the request path.
func GinGuardPath(gate *goGate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ginServe(gate, resolve(gate, c.Request.URL.Path), c)
	}
}

// SessionFromGin returns the snapshot stored by GinGuard.
func SessionFromGin(c *gin.Context) (goGate.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return goGate.Session{}, false
	}
	s, ok := v.(goGate.Session)
	return s, ok
}

func ginServe(gate *goGate.Gate, dest goGate.Destination, c *gin.Context) {
	s, d, resp := evaluate(gate, c.Request, dest)

	switch resp.status {
	case http.StatusOK:
		ctx := goGate.WithSession(c.Request.Context(), s)
		ctx = goGate.WithDestination(ctx, dest)
		c.Request = c.Request.WithContext(ctx)
		c.Set(SessionKey, s)
		c.Next()
	case http.StatusFound:
		c.Redirect(http.StatusFound, resp.location)
		c.Abort()
	case http.StatusServiceUnavailable:
		c.Header("Retry-After", resp.retryAfter)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"outcome": d.Outcome.String(), "message": "session not ready"})
	default:
		c.AbortWithStatusJSON(resp.status, gin.H{"outcome": d.Outcome.String()})
	}
}
