package middleware

import (
	"math"
	"net/http"
	"strconv"

	goGate "github.com/MrEthical07/goGate"
)

// Guard protects next with the rule for dest.
func Guard(gate *goGate.Gate, dest goGate.Destination) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			serve(gate, dest, w, r, next)
		})
	}
}

// GuardPath protects next with the rule for the destination at r.URL.Path.
// Unlisted paths get the policy's fallback mode.
func GuardPath(gate *goGate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			serve(gate, resolve(gate, r.URL.Path), w, r, next)
		})
	}
}

func resolve(gate *goGate.Gate, path string) goGate.Destination {
	if gate != nil && gate.Policy() != nil {
		if d, ok := gate.Policy().Resolve(path); ok {
			return d
		}
	}
	return goGate.Destination(path)
}

// response is what a decision turns into at the HTTP boundary.
type response struct {
	status     int
	location   string
	retryAfter string
}

func evaluate(gate *goGate.Gate, r *http.Request, dest goGate.Destination) (goGate.Session, goGate.Decision, response) {
	if gate == nil {
		return goGate.Session{}, goGate.Decision{Outcome: goGate.Pending}, response{status: http.StatusServiceUnavailable, retryAfter: "1"}
	}

	s := gate.Session()
	d := gate.DecideSession(r.Context(), s, dest)

	switch d.Outcome {
	case goGate.Allow:
		return s, d, response{status: http.StatusOK}
	case goGate.DenyUnauthenticated, goGate.DenyForbidden:
		if loc, ok := gate.RedirectPath(d); ok {
			return s, d, response{status: http.StatusFound, location: loc}
		}
		if d.Outcome == goGate.DenyUnauthenticated {
			return s, d, response{status: http.StatusUnauthorized}
		}
		return s, d, response{status: http.StatusForbidden}
	default:
		return s, d, response{status: http.StatusServiceUnavailable, retryAfter: retryAfter(gate)}
	}
}

func retryAfter(gate *goGate.Gate) string {
	secs := int(math.Ceil(gate.Config().Routing.PendingRetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func serve(gate *goGate.Gate, dest goGate.Destination, w http.ResponseWriter, r *http.Request, next http.Handler) {
	s, _, resp := evaluate(gate, r, dest)

	switch resp.status {
	case http.StatusOK:
		ctx := goGate.WithSession(r.Context(), s)
		ctx = goGate.WithDestination(ctx, dest)
		next.ServeHTTP(w, r.WithContext(ctx))
	case http.StatusFound:
		http.Redirect(w, r, resp.location, http.StatusFound)
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", resp.retryAfter)
		http.Error(w, "session not ready", http.StatusServiceUnavailable)
	default:
		http.Error(w, http.StatusText(resp.status), resp.status)
	}
}
