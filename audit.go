package goGate

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/flows"
)

type (
	// AuditEvent is one audit record.
	AuditEvent = audit.Event
	// AuditSink receives audit events from the Gate's dispatcher goroutine.
	AuditSink = audit.Sink
	// NoOpSink drops every event.
	NoOpSink = audit.NoOpSink
	// ChannelSink buffers events in a channel.
	ChannelSink = audit.ChannelSink
	// JSONWriterSink writes one JSON object per line.
	JSONWriterSink = audit.JSONWriterSink
	// LogSink writes events as slog records.
	LogSink = audit.LogSink
)

// Audit event types.
const (
	AuditLogin         = audit.EventLogin
	AuditLoginRejected = audit.EventLoginRejected
	AuditLogout        = audit.EventLogout
	AuditBootstrap     = audit.EventBootstrap
	AuditRoleSwitch    = audit.EventRoleSwitch
	AuditGuardDenied   = audit.EventGuardDenied
)

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return audit.NewLogSink(logger)
}

func (g *Gate) emitAudit(ctx context.Context, eventType string, success bool, subject flows.Subject, err error, metadata func() map[string]string) {
	if g == nil || g.audit == nil || eventType == "" {
		return
	}
	ev := audit.NewEvent(eventType)
	ev.Username = subject.Username
	ev.Role = subject.Role
	ev.Destination = subject.Destination
	ev.Outcome = subject.Outcome
	ev.Success = success
	if err != nil {
		ev.Error = err.Error()
	}
	if metadata != nil {
		ev.Metadata = metadata()
	}
	g.audit.Emit(ctx, ev)
}
