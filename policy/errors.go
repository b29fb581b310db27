package policy

import "errors"

var (
	// ErrInvalidPolicy is wrapped by every construction and load failure.
	ErrInvalidPolicy = errors.New("policy: invalid policy")
	// ErrUnknownDestination is returned by lookups on unlisted destinations.
	ErrUnknownDestination = errors.New("policy: unknown destination")
)
