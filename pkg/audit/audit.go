// Package audit defines the request audit trail. Every API request produces
// one Record, persisted off the hot path by the server's worker pool.
package audit

import (
	"context"
	"time"
)

// Record is one audited API request.
type Record struct {
	ID         string    `json:"id"`
	Task       string    `json:"task"`
	Model      string    `json:"model,omitempty"`
	RequestID  string    `json:"request_id"`
	DurationMS int64     `json:"duration_ms"`
	OK         bool      `json:"ok"`
	CreatedAt  time.Time `json:"created_at"`
}

// Driver persists audit records. Implementations must be safe for
// concurrent use.
type Driver interface {
	// Put stores one record.
	Put(ctx context.Context, record Record) error

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)

	// Close releases the driver's resources.
	Close() error
}
