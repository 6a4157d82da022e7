package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

const (
	keyPrefix = "cart:"

	defaultTimeout = 5 * time.Second
)

// Store is a durable key-value slot. Get returns domain.ErrNotFound for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// SessionKey is the storage key of a shopping session's cart.
func SessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Slot binds a Store to the one key a cart owns. Reads and writes are detached
// from the caller's cancellation and bounded by their own timeout.
type Slot struct {
	store   Store
	key     string
	timeout time.Duration
	logger  *zap.Logger
}

func NewSlot(store Store, key string, logger *zap.Logger) *Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slot{
		store:   store,
		key:     key,
		timeout: defaultTimeout,
		logger:  logger.With(zap.String("key", key)),
	}
}

func (s *Slot) Key() string {
	return s.key
}

// Load returns the saved line items. A missing or malformed snapshot yields an
// empty cart. A failed read is returned wrapped in domain.ErrUnavailable.
func (s *Slot) Load(ctx context.Context) ([]domain.LineItem, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrUnavailable, s.key, err)
	}
	items, err := Decode(raw)
	if err != nil {
		s.logger.Warn("cart snapshot unparsable, starting empty", zap.Error(err))
		return []domain.LineItem{}, nil
	}
	return items, nil
}

// Save overwrites the slot with the full item list.
func (s *Slot) Save(ctx context.Context, items []domain.LineItem) error {
	raw, err := Encode(items)
	if err != nil {
		return err
	}
	ctx, cancel := s.detach(ctx)
	defer cancel()
	return s.store.Put(ctx, s.key, raw)
}

func (s *Slot) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}
