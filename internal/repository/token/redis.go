package token

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

const redisKeyPrefix = "session-token:"

type redisRepo struct {
	client *redis.Client
}

// NewRedis stores each token under its own key, expiring with the token.
func NewRedis(client *redis.Client) Repository {
	return &redisRepo{client: client}
}

type redisToken struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *redisRepo) Create(ctx context.Context, token Token) error {
	raw, err := json.Marshal(redisToken{SessionID: token.SessionID, ExpiresAt: token.ExpiresAt, CreatedAt: token.CreatedAt})
	if err != nil {
		return err
	}
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return errors.New("token already expired")
	}
	ok, err := r.client.SetNX(ctx, redisKeyPrefix+token.Token, raw, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *redisRepo) Get(ctx context.Context, token string) (*Token, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var stored redisToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &Token{Token: token, SessionID: stored.SessionID, ExpiresAt: stored.ExpiresAt, CreatedAt: stored.CreatedAt}, nil
}

func (r *redisRepo) Delete(ctx context.Context, token string) error {
	n, err := r.client.Del(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
