package session

import "errors"

var (
	// ErrInvalidIdentity is returned by Login when the identity is missing a
	// username or carries an unknown role.
	ErrInvalidIdentity = errors.New("invalid user identity")
	// ErrEmptyToken is returned by Login when the bearer token is empty.
	ErrEmptyToken = errors.New("empty bearer token")
	// ErrCorruptUser is returned by DecodeUser for malformed persisted records.
	ErrCorruptUser = errors.New("corrupt user record")
)
