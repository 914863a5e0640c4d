// Package telemetry emits authentication events to the observability
// backend.
package telemetry

import (
	"context"
	"time"
)

// Event is one observable authentication event. SessionTokenHash carries
// the hashed token, never the cleartext.
type Event struct {
	UserID           string
	SessionTokenHash string
	EventType        string
	Source           string
	Metadata         string
	CreatedAt        time.Time
}

// EventEmitter emits telemetry events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
