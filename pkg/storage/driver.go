// Package storage persists conversation turns per user and serves the most
// recent ones back in chronological order.
package storage

import "context"

// Driver is a bounded, per-user conversation history.
//
// Record appends a turn and evicts the oldest turns of that user beyond the
// driver's retention cap. Recent returns up to limit of the newest turns,
// oldest first; an unknown user yields an empty slice and no error.
// Backend failures are reported as *UnavailableError.
type Driver interface {
	Record(ctx context.Context, userID string, role Role, content string) (*Turn, error)
	Recent(ctx context.Context, userID string, limit int) ([]*Turn, error)

	// Close closes the store and releases any resources.
	Close() error
}

// DefaultRetention is the number of turns kept per user when a driver is
// created without an explicit cap.
const DefaultRetention = 10
