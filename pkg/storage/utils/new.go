package storageutils

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/storage/inmemory"
	"github.com/papercomputeco/relay/pkg/storage/postgres"
	"github.com/papercomputeco/relay/pkg/storage/sqlite"
)

type NewDriverOpts struct {
	// DatabaseURL selects a durable store: postgres://, postgresql:// or
	// sqlite://<path>. It wins over SQLitePath.
	DatabaseURL string
	SQLitePath  string
	Retention   int
	Logger      *slog.Logger
}

// NewDriver picks the history driver for the given options. Without a
// database URL or sqlite path history is kept in memory.
func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}

	switch {
	case o.DatabaseURL != "":
		u, err := url.Parse(o.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing database url: %w", err)
		}

		switch strings.ToLower(u.Scheme) {
		case "postgres", "postgresql":
			log.Info("using postgres history store", "host", u.Host)
			return postgres.NewDriver(ctx, o.DatabaseURL, o.Retention)
		case "sqlite", "sqlite3":
			path := strings.TrimPrefix(o.DatabaseURL, u.Scheme+"://")
			log.Info("using sqlite history store", "path", path)
			return sqlite.NewSQLiteDriver(ctx, path, o.Retention)
		default:
			return nil, fmt.Errorf("unsupported database url scheme: %q", u.Scheme)
		}

	case o.SQLitePath != "":
		log.Info("using sqlite history store", "path", o.SQLitePath)
		return sqlite.NewSQLiteDriver(ctx, o.SQLitePath, o.Retention)

	default:
		log.Info("using in-memory history store")
		return inmemory.NewDriver(inmemory.WithRetention(o.Retention)), nil
	}
}
