package audit

import (
	"context"
	"time"
)

// AccessRecord is one row of the request log: who hit which route, with
// what outcome, and how long it took. Password material never appears here.
type AccessRecord struct {
	CreatedAt      time.Time
	UserID         *int64
	Username       string
	Event          string // "request" for plain traffic, else the auth event name
	Method         string
	Route          string
	Status         int
	ResponseTimeMS int64
	IP             string
	HostHeader     string
	UserAgent      string
	Referer        string
	RequestID      string
	Extra          map[string]any
}

// AccessRecorder persists access records. Implementations must tolerate
// being called from request goroutines; a failed write is logged, never
// surfaced to the client.
type AccessRecorder interface {
	RecordAccess(ctx context.Context, rec AccessRecord) error
}

// NopRecorder discards every record. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) RecordAccess(context.Context, AccessRecord) error { return nil }
