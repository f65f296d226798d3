// Package inmemory provides a process-local history driver.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/papercomputeco/relay/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map. History is lost
// when the process exits.
type Driver struct {
	// mu guards turns
	mu sync.RWMutex

	// turns holds each user's retained turns, oldest first
	turns map[string][]*storage.Turn

	retention int
	now       func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithRetention sets how many turns are kept per user.
func WithRetention(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.retention = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		d.now = now
	}
}

// NewDriver creates a new in-memory driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		turns:     make(map[string][]*storage.Turn),
		retention: storage.DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Record appends a turn, dropping the user's oldest turns beyond the
// retention cap.
func (d *Driver) Record(_ context.Context, userID string, role storage.Role, content string) (*storage.Turn, error) {
	if userID == "" {
		return nil, storage.ErrEmptyUserID
	}

	turn := &storage.Turn{
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: d.now().UTC(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	turns := d.turns[userID]
	if over := len(turns) + 1 - d.retention; over > 0 {
		turns = append(turns[:0:0], turns[over:]...)
	}
	d.turns[userID] = append(turns, turn)

	return turn, nil
}

// Recent returns the newest limit turns for userID, oldest first.
func (d *Driver) Recent(_ context.Context, userID string, limit int) ([]*storage.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	turns := d.turns[userID]
	if limit >= 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}

	out := make([]*storage.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
