package main

import (
	"errors"
	"log/slog"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/authclient"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	"github.com/MrEthical07/goGate/middleware"
	"github.com/MrEthical07/goGate/role"
	"github.com/gin-gonic/gin"
)

// newRouter serves every policy destination behind the guard plus the
// session API.
func newRouter(gate *goGate.Gate, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	table := gate.Policy()
	for _, dest := range table.Destinations() {
		path, err := table.Path(dest)
		if err != nil {
			continue
		}
		r.GET(path, middleware.GinGuard(gate, dest), pageHandler(gate, dest))
	}
	r.NoRoute(middleware.GinGuardPath(gate), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	r.POST("/login", loginHandler(gate, logger))
	r.POST("/logout", logoutHandler(gate))

	api := r.Group("/api")
	api.GET("/session", sessionHandler(gate))
	api.GET("/nav", navHandler(gate))
	api.POST("/role", switchRoleHandler(gate))

	r.GET("/metrics", gin.WrapH(prometheus.New(gate).Handler()))
	return r
}

func userJSON(u *goGate.UserIdentity) gin.H {
	if u == nil {
		return nil
	}
	return gin.H{
		"username":    u.Username,
		"name":        u.Name,
		"email":       u.Email,
		"role":        string(u.Role),
		"displayName": u.DisplayName(),
		"initials":    u.Initials(),
	}
}

func linksJSON(links []goGate.Link) []gin.H {
	out := make([]gin.H, 0, len(links))
	for _, l := range links {
		out = append(out, gin.H{"destination": string(l.Destination), "path": l.Path})
	}
	return out
}

func pageHandler(gate *goGate.Gate, dest goGate.Destination) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, _ := middleware.SessionFromGin(c)
		c.JSON(http.StatusOK, gin.H{
			"destination": string(dest),
			"user":        userJSON(s.User),
			"links":       linksJSON(gate.Policy().Links(s)),
		})
	}
}

func loginHandler(gate *goGate.Gate, logger *slog.Logger) gin.HandlerFunc {
	type reqBody struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	return func(c *gin.Context) {
		var req reqBody
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
			return
		}

		u, err := gate.LoginWithPassword(c.Request.Context(), req.Username, req.Password)
		switch {
		case err == nil:
		case errors.Is(err, goGate.ErrPersistFailed):
			logger.Warn("session not persisted", "error", err)
		case errors.Is(err, goGate.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": rejectMessage(err)})
			return
		default:
			logger.Error("login failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Login failed"})
			return
		}

		landing, _ := gate.Policy().Path(gate.Policy().Landing())
		c.JSON(http.StatusOK, gin.H{"user": userJSON(&u), "redirect": landing})
	}
}

// rejectMessage prefers the authentication service's own message.
func rejectMessage(err error) string {
	var rej *authclient.RejectedError
	if errors.As(err, &rej) {
		return rej.Message
	}
	return authclient.DefaultRejectMessage
}

func logoutHandler(gate *goGate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		gate.Logout(c.Request.Context())
		home, _ := gate.Policy().Path(gate.Policy().Home())
		c.JSON(http.StatusOK, gin.H{"redirect": home})
	}
}

func sessionHandler(gate *goGate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := gate.Session()
		c.JSON(http.StatusOK, gin.H{
			"ready":         s.Ready,
			"authenticated": s.Authenticated,
			"user":          userJSON(s.User),
		})
	}
}

func navHandler(gate *goGate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		brand := gate.Brand()
		c.JSON(http.StatusOK, gin.H{
			"brand": gin.H{"destination": string(brand.Destination), "path": brand.Path},
			"links": linksJSON(gate.Links()),
		})
	}
}

func switchRoleHandler(gate *goGate.Gate) gin.HandlerFunc {
	type reqBody struct {
		Role string `json:"role"`
	}
	return func(c *gin.Context) {
		var req reqBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "role is required"})
			return
		}
		r, err := role.Parse(req.Role)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		u, err := gate.SwitchRole(c.Request.Context(), r)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"user": userJSON(&u)})
		case errors.Is(err, goGate.ErrDevModeDisabled):
			c.JSON(http.StatusForbidden, gin.H{"message": "role switching is disabled"})
		case errors.Is(err, goGate.ErrNotAuthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "sign in first"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
	}
}
