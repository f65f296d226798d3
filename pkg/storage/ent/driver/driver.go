// Package entdriver implements storage.Driver on top of ent's SQL dialect
// layer. It is database-agnostic and embedded by the sqlite and postgres
// drivers.
package entdriver

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/papercomputeco/relay/pkg/storage"
)

// EntDriver provides history operations over an ent SQL driver.
type EntDriver struct {
	Driver    *entsql.Driver
	Retention int
	Now       func() time.Time
}

// New wraps drv and runs the schema migration.
func New(ctx context.Context, drv *entsql.Driver, retention int) (*EntDriver, error) {
	if retention <= 0 {
		retention = storage.DefaultRetention
	}

	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migration: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &EntDriver{
		Driver:    drv,
		Retention: retention,
		Now:       time.Now,
	}, nil
}

// Record inserts a turn and evicts the user's turns older than the newest
// Retention rows, in one transaction.
func (ed *EntDriver) Record(ctx context.Context, userID string, role storage.Role, content string) (turn *storage.Turn, err error) {
	if userID == "" {
		return nil, storage.ErrEmptyUserID
	}

	turn = &storage.Turn{
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: ed.Now().UTC(),
	}

	tx, err := ed.Driver.Tx(ctx)
	if err != nil {
		return nil, &storage.UnavailableError{Op: "record", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	d := entsql.Dialect(ed.Driver.Dialect())

	query, args := d.Insert(turnsTableName).
		Columns(columnUserID, columnRole, columnContent, columnCreatedAt).
		Values(turn.UserID, string(turn.Role), turn.Content, turn.Timestamp).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return nil, &storage.UnavailableError{Op: "record", Err: err}
	}

	// The Retention-th newest id is the oldest one that survives.
	query, args = d.Select(columnID).
		From(entsql.Table(turnsTableName)).
		Where(entsql.EQ(columnUserID, userID)).
		OrderBy(entsql.Desc(columnID)).
		Limit(1).
		Offset(ed.Retention - 1).
		Query()
	var rows entsql.Rows
	if err := tx.Query(ctx, query, args, &rows); err != nil {
		return nil, &storage.UnavailableError{Op: "record", Err: err}
	}
	var threshold int
	found := rows.Next()
	if found {
		err = rows.Scan(&threshold)
	}
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, &storage.UnavailableError{Op: "record", Err: err}
	}

	if found {
		query, args = d.Delete(turnsTableName).
			Where(entsql.And(
				entsql.EQ(columnUserID, userID),
				entsql.LT(columnID, threshold),
			)).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return nil, &storage.UnavailableError{Op: "evict", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &storage.UnavailableError{Op: "record", Err: err}
	}

	return turn, nil
}

// Recent returns the newest limit turns for userID, oldest first.
func (ed *EntDriver) Recent(ctx context.Context, userID string, limit int) ([]*storage.Turn, error) {
	if limit == 0 {
		return []*storage.Turn{}, nil
	}

	sel := entsql.Dialect(ed.Driver.Dialect()).
		Select(columnUserID, columnRole, columnContent, columnCreatedAt).
		From(entsql.Table(turnsTableName)).
		Where(entsql.EQ(columnUserID, userID)).
		OrderBy(entsql.Desc(columnID))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := ed.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, &storage.UnavailableError{Op: "recent", Err: err}
	}
	defer rows.Close()

	turns := []*storage.Turn{}
	for rows.Next() {
		var (
			t    storage.Turn
			role string
		)
		if err := rows.Scan(&t.UserID, &role, &t.Content, &t.Timestamp); err != nil {
			return nil, &storage.UnavailableError{Op: "recent", Err: err}
		}
		t.Role = storage.Role(role)
		turns = append(turns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.UnavailableError{Op: "recent", Err: err}
	}

	// Newest first from the query; callers want chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}
