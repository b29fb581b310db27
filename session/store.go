package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Eraser removes the durable session snapshot. The persistence adapter
// satisfies it.
type Eraser interface {
	Clear(ctx context.Context) error
}

// EraserFunc adapts a function to Eraser.
type EraserFunc func(ctx context.Context) error

func (f EraserFunc) Clear(ctx context.Context) error {
	return f(ctx)
}

// Store holds the authoritative Session. It starts unauthenticated and not
// ready. All methods are total: none panics and only Login can refuse.
type Store struct {
	mu     sync.RWMutex
	state  Session
	ready  chan struct{}
	eraser Eraser
	logger *slog.Logger
}

// NewStore creates a store whose Logout erases through eraser. A nil eraser
// makes Logout purely in-memory; a nil logger discards.
func NewStore(eraser Eraser, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		ready:  make(chan struct{}),
		eraser: eraser,
		logger: logger,
	}
}

// Login replaces the current identity and token. It is last-write-wins: no
// field of a previous login survives.
//
// Precondition: user passes [UserIdentity.Validate] and token is non-empty. A
// violation returns ErrInvalidIdentity or ErrEmptyToken and leaves the state
// untouched.
func (s *Store) Login(user UserIdentity, token string) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if token == "" {
		return ErrEmptyToken
	}

	u := user

	s.mu.Lock()
	s.state.Authenticated = true
	s.state.User = &u
	s.state.Token = token
	s.mu.Unlock()
	return nil
}

// Logout clears the identity and asks the eraser to drop the durable snapshot.
// It never fails; eraser errors are logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state.Authenticated = false
	s.state.User = nil
	s.state.Token = ""
	s.mu.Unlock()

	if s.eraser == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.eraser.Clear(ctx); err != nil {
		s.logger.Warn("session: persisted snapshot erase failed", "error", err)
	}
}

// MarkBootstrapped sets Ready. It is idempotent; the return value reports
// whether this call performed the transition.
func (s *Store) MarkBootstrapped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Ready {
		return false
	}
	s.state.Ready = true
	close(s.ready)
	return true
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Ready is closed once MarkBootstrapped has run.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether bootstrap has completed.
func (s *Store) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Ready
}
