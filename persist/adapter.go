package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrEthical07/goGate/session"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// Snapshot is the durable pair written on login and erased on logout.
type Snapshot struct {
	Token string
	User  session.UserIdentity
}

// LoadStatus classifies a Load for callers that want to observe corruption.
type LoadStatus uint8

const (
	// StatusAbsent means no prior session was stored.
	StatusAbsent LoadStatus = iota
	// StatusRestored means a well-formed snapshot was read.
	StatusRestored
	// StatusCorrupt means something was stored but could not be used.
	StatusCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusRestored:
		return "restored"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// Adapter reads and writes the snapshot through a Storage backend.
type Adapter struct {
	storage  Storage
	tokenKey string
	userKey  string
	logger   *slog.Logger
}

// NewAdapter binds an adapter to storage. namespace, when non-empty, prefixes
// both keys as "<namespace>:token" and "<namespace>:user".
func NewAdapter(storage Storage, namespace string, logger *slog.Logger) (*Adapter, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &Adapter{
		storage:  storage,
		tokenKey: tokenKey,
		userKey:  userKey,
		logger:   logger,
	}
	if namespace != "" {
		a.tokenKey = namespace + ":" + tokenKey
		a.userKey = namespace + ":" + userKey
	}
	return a, nil
}

// Keys returns the token and user keys in use.
func (a *Adapter) Keys() (token, user string) {
	return a.tokenKey, a.userKey
}

// Save writes both entries. If the second write fails the first is rolled
// back so the pair never exists half-written.
func (a *Adapter) Save(ctx context.Context, user session.UserIdentity, token string) error {
	if token == "" {
		return session.ErrEmptyToken
	}
	encoded, err := session.EncodeUser(user)
	if err != nil {
		return err
	}

	if err := a.storage.Set(ctx, a.tokenKey, token); err != nil {
		return fmt.Errorf("%w: write token: %v", ErrStorageUnavailable, err)
	}
	if err := a.storage.Set(ctx, a.userKey, string(encoded)); err != nil {
		if rbErr := a.storage.Delete(ctx, a.tokenKey); rbErr != nil {
			a.logger.Warn("persist: token rollback failed", "error", rbErr)
		}
		return fmt.Errorf("%w: write user: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Load returns the stored snapshot, or false when there is none or it is
// unusable.
func (a *Adapter) Load(ctx context.Context) (Snapshot, bool) {
	snap, status := a.LoadDetailed(ctx)
	return snap, status == StatusRestored
}

// LoadDetailed is Load with the reason for an absent result.
func (a *Adapter) LoadDetailed(ctx context.Context) (Snapshot, LoadStatus) {
	token, hasToken, err := a.storage.Get(ctx, a.tokenKey)
	if err != nil {
		a.logger.Debug("persist: token read failed", "error", err)
		return Snapshot{}, StatusCorrupt
	}
	rawUser, hasUser, err := a.storage.Get(ctx, a.userKey)
	if err != nil {
		a.logger.Debug("persist: user read failed", "error", err)
		return Snapshot{}, StatusCorrupt
	}

	switch {
	case !hasToken && !hasUser:
		return Snapshot{}, StatusAbsent
	case token == "" || rawUser == "":
		// Matches the browser shell: an empty or missing half is no session.
		a.logger.Debug("persist: incomplete snapshot", "has_token", hasToken && token != "", "has_user", hasUser && rawUser != "")
		return Snapshot{}, StatusCorrupt
	}

	user, err := session.DecodeUser([]byte(rawUser))
	if err != nil {
		a.logger.Debug("persist: user record unusable", "error", err)
		return Snapshot{}, StatusCorrupt
	}
	return Snapshot{Token: token, User: user}, StatusRestored
}

// Clear erases both entries. Clearing an empty store is not an error.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.storage.Delete(ctx, a.tokenKey, a.userKey); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// IsUnavailable reports whether err came from the storage backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
