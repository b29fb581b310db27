package rate

import "errors"

var (
	// ErrRateLimited is returned once the failure budget for a window is spent.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis errors.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
