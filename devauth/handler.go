package devauth

import (
	"errors"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/gin-gonic/gin"
)

// LoginPath is where Routes mounts the login handler.
const LoginPath = "/api/login"

// Routes registers the login endpoint on r.
func (s *Service) Routes(r gin.IRouter) {
	r.POST(LoginPath, s.loginHandler())
}

// Handler returns a standalone gin engine serving Routes.
func (s *Service) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	s.Routes(r)
	return r
}

func (s *Service) loginHandler() gin.HandlerFunc {
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

		u, tok, err := s.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
		switch {
		case err == nil:
		case errors.Is(err, ErrThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many attempts"})
			return
		case errors.Is(err, goGate.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		default:
			s.logger.Error("login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
			return
		}

		user := gin.H{"username": u.Username, "role": string(u.Role)}
		if u.Name != "" {
			user["name"] = u.Name
		}
		if u.Email != "" {
			user["email"] = u.Email
		}
		c.JSON(http.StatusOK, gin.H{"user": user, "token": tok})
	}
}
