package goGate

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("goGate: not authenticated")
	// ErrDevModeDisabled is returned by SwitchRole outside development mode.
	ErrDevModeDisabled = errors.New("goGate: dev mode disabled")
	// ErrInvalidCredentials is returned when the authentication service
	// refuses a username/password pair.
	ErrInvalidCredentials = errors.New("goGate: invalid credentials")
	// ErrNoAuthenticator is returned by LoginWithPassword when the Gate was
	// built without an Authenticator.
	ErrNoAuthenticator = errors.New("goGate: no authenticator configured")
	// ErrPersistFailed wraps storage failures during Login. The in-memory
	// session was still replaced.
	ErrPersistFailed = errors.New("goGate: session not persisted")
	// ErrGateNotReady is returned by methods called on a Gate that was not
	// produced by Builder.Build.
	ErrGateNotReady = errors.New("goGate: gate not initialized")
	// ErrBuilderUsed is returned by a second Build call.
	ErrBuilderUsed = errors.New("goGate: builder already used")
)
