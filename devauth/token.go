package devauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenConfig configures HS256 token minting.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// Claims is the token payload.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Tokens mints and parses HS256 tokens.
type Tokens struct {
	config TokenConfig
	now    func() time.Time
}

func NewTokens(cfg TokenConfig) (*Tokens, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("token secret must be at least 16 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Tokens{config: cfg, now: time.Now}, nil
}

// Issue returns a signed token for u with a random jti.
func (t *Tokens) Issue(u session.UserIdentity) (string, error) {
	now := t.now()
	claims := Claims{
		Role: string(u.Role),
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			Issuer:    t.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.config.Secret)
}

// Parse verifies tok and returns the identity it carries.
func (t *Tokens) Parse(tok string) (session.UserIdentity, *Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	}
	if t.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(t.config.Leeway))
	}
	if t.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(t.config.Issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.NewParser(options...).ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return t.config.Secret, nil
	})
	if err != nil {
		return session.UserIdentity{}, nil, err
	}
	if !parsed.Valid {
		return session.UserIdentity{}, nil, jwt.ErrTokenInvalidClaims
	}

	r, err := role.Parse(claims.Role)
	if err != nil {
		return session.UserIdentity{}, nil, fmt.Errorf("%w: %v", jwt.ErrTokenInvalidClaims, err)
	}
	u := session.UserIdentity{Username: claims.Subject, Name: claims.Name, Role: r}
	if err := u.Validate(); err != nil {
		return session.UserIdentity{}, nil, fmt.Errorf("%w: %v", jwt.ErrTokenInvalidClaims, err)
	}
	return u, claims, nil
}
