package token

import (
	"context"
	"time"
)

// Token binds a bearer token to the shopping session it opens.
type Token struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Repository stores session tokens. Get returns domain.ErrNotFound for unknown
// tokens; Create returns domain.ErrAlreadyExists on collision.
type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
