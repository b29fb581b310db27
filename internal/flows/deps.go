package flows

import (
	"context"
	"io"
	"log/slog"
)

// Subject identifies who and what an audit event is about.
type Subject struct {
	Username    string
	Role        string
	Destination string
	Outcome     string
}

// AuditFunc emits one audit event. metadata is only called when the event is
// actually recorded.
type AuditFunc func(ctx context.Context, eventType string, success bool, subject Subject, err error, metadata func() map[string]string)

// Deps groups flow dependency sets. The Gate builds this once and delegates
// each operation to the matching flow.
type Deps struct {
	Bootstrap BootstrapDeps
	Login     LoginDeps
	Logout    LogoutDeps
	Switch    SwitchRoleDeps
	Decide    DecideDeps
}

func noopMetric(int) {}

func noopAudit(context.Context, string, bool, Subject, error, func() map[string]string) {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
