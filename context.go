package goGate

import "context"

type sessionContextKey struct{}
type destinationContextKey struct{}

// WithSession attaches a session snapshot to ctx. HTTP adapters call it for
// requests the guard allowed.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the snapshot attached by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionContextKey{}).(Session)
	return s, ok
}

// WithDestination attaches the destination a request was guarded as.
func WithDestination(ctx context.Context, d Destination) context.Context {
	return context.WithValue(ctx, destinationContextKey{}, d)
}

// DestinationFromContext returns the destination attached by WithDestination.
func DestinationFromContext(ctx context.Context) (Destination, bool) {
	if ctx == nil {
		return "", false
	}
	d, ok := ctx.Value(destinationContextKey{}).(Destination)
	return d, ok
}
