package token

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront/internal/domain"
)

type sqliteRepo struct {
	db *sql.DB
}

// NewSQLite keeps tokens in the session_tokens table created by db.OpenSQLite.
func NewSQLite(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

func (r *sqliteRepo) Create(ctx context.Context, token Token) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_tokens (token, session_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token.Token, token.SessionID, token.ExpiresAt.UTC(), token.CreatedAt.UTC(),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *sqliteRepo) Get(ctx context.Context, token string) (*Token, error) {
	var out Token
	err := r.db.QueryRowContext(ctx,
		`SELECT token, session_id, expires_at, created_at FROM session_tokens WHERE token = ?`, token,
	).Scan(&out.Token, &out.SessionID, &out.ExpiresAt, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *sqliteRepo) Delete(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE token = ?`, token)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
