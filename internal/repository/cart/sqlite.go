package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront/internal/domain"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLite stores snapshots in the cart_snapshots table of a local SQLite file.
// The table is created by db.OpenSQLite.
func NewSQLite(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM cart_snapshots WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (s *sqliteStore) Put(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO cart_snapshots (key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    payload = excluded.payload,
    updated_at = excluded.updated_at
`
	_, err := s.db.ExecContext(ctx, q, key, value, time.Now().UTC())
	return err
}
