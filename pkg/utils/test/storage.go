package testutils

import (
	"context"

	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/storage/inmemory"
)

// FailingDriver is a history driver whose operations can be made to fail
// independently. Operations that do not fail are served from memory.
type FailingDriver struct {
	// Err is wrapped in a *storage.UnavailableError on failure.
	Err error

	// FailRecord causes Record to fail.
	FailRecord bool

	// FailRecent causes Recent to fail.
	FailRecent bool

	inner *inmemory.Driver
}

// NewFailingDriver creates a driver that fails every operation with err.
func NewFailingDriver(err error) *FailingDriver {
	return &FailingDriver{
		Err:        err,
		FailRecord: true,
		FailRecent: true,
		inner:      inmemory.NewDriver(),
	}
}

func (f *FailingDriver) Record(ctx context.Context, userID string, role storage.Role, content string) (*storage.Turn, error) {
	if f.FailRecord {
		return nil, &storage.UnavailableError{Op: "record", Err: f.Err}
	}
	return f.inner.Record(ctx, userID, role, content)
}

func (f *FailingDriver) Recent(ctx context.Context, userID string, limit int) ([]*storage.Turn, error) {
	if f.FailRecent {
		return nil, &storage.UnavailableError{Op: "recent", Err: f.Err}
	}
	return f.inner.Recent(ctx, userID, limit)
}

func (f *FailingDriver) Close() error {
	return nil
}
