package devauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/session"
	"github.com/redis/go-redis/v9"
)

// ErrThrottled is returned while a user or address is locked out.
var ErrThrottled = errors.New("devauth: too many attempts")

// Config configures a Service.
type Config struct {
	Hash  HashConfig
	Token TokenConfig
	Rate  rate.Config
	// Users defaults to TestUsers.
	Users []session.UserIdentity
}

// DefaultConfig returns a usable configuration around secret.
func DefaultConfig(secret []byte) Config {
	return Config{
		Hash: DefaultHashConfig(),
		Token: TokenConfig{
			Secret: secret,
			TTL:    time.Hour,
			Issuer: "gogate-devauth",
		},
		Rate: rate.DefaultConfig(),
	}
}

type account struct {
	user session.UserIdentity
	hash string
}

// Service checks credentials against the seeded accounts.
type Service struct {
	accounts map[string]account
	hasher   *Hasher
	tokens   *Tokens
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New hashes every account's password and prepares token minting. A nil
// redisClient disables throttling.
func New(cfg Config, redisClient redis.UniversalClient, logger *slog.Logger) (*Service, error) {
	hasher, err := NewHasher(cfg.Hash)
	if err != nil {
		return nil, err
	}
	tokens, err := NewTokens(cfg.Token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	users := cfg.Users
	if users == nil {
		users = TestUsers()
	}
	s := &Service{
		accounts: make(map[string]account, len(users)),
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger.With("component", "devauth"),
	}
	for _, u := range users {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.accounts[u.Username]; dup {
			return nil, fmt.Errorf("devauth: duplicate user %q", u.Username)
		}
		h, err := hasher.Hash(u.Username)
		if err != nil {
			return nil, err
		}
		s.accounts[u.Username] = account{user: u, hash: h}
	}
	if redisClient != nil {
		s.limiter = rate.New(redisClient, cfg.Rate)
	}
	return s, nil
}

// Login checks username and password and returns the user with a fresh token.
// ip feeds the per-address throttle and may be empty.
func (s *Service) Login(ctx context.Context, username, password, ip string) (session.UserIdentity, string, error) {
	username = strings.TrimSpace(username)

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, username, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return session.UserIdentity{}, "", ErrThrottled
			}
			// Throttle outages fail open.
			s.logger.Warn("throttle check failed", "error", err)
		}
	}

	acc, ok := s.accounts[username]
	valid := false
	if ok {
		var err error
		valid, err = s.hasher.Verify(password, acc.hash)
		if err != nil {
			return session.UserIdentity{}, "", err
		}
	}
	if !valid {
		s.recordFailure(ctx, username, ip)
		return session.UserIdentity{}, "", goGate.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username, ip); err != nil {
			s.logger.Warn("throttle reset failed", "error", err)
		}
	}

	tok, err := s.tokens.Issue(acc.user)
	if err != nil {
		return session.UserIdentity{}, "", err
	}
	s.logger.Info("login", "username", username, "role", acc.user.Role)
	return acc.user, tok, nil
}

// Authenticate lets a Gate sign in against the Service in-process.
func (s *Service) Authenticate(ctx context.Context, username, password string) (session.UserIdentity, string, error) {
	return s.Login(ctx, username, password, "")
}

// Tokens exposes token parsing for resource servers.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

func (s *Service) recordFailure(ctx context.Context, username, ip string) {
	s.logger.Info("login rejected", "username", username)
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, username, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
		s.logger.Warn("throttle update failed", "error", err)
	}
}

var _ goGate.Authenticator = (*Service)(nil)
