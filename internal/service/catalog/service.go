package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

// ErrInvalidProduct wraps every validation failure of Upsert.
var ErrInvalidProduct = errors.New("invalid product")

// ProductChanged is published after a product has been stored.
type ProductChanged struct {
	Product domain.Product
}

type Service struct {
	repo productrepo.Repository

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(ProductChanged)
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo, subs: make(map[int]func(ProductChanged))}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Upsert validates and stores p, then tells every subscriber about it.
func (s *Service) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidProduct)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidProduct)
	}
	if p.Price.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	stored, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	s.publish(ProductChanged{Product: *stored})
	return stored, nil
}

// Subscribe registers fn for product changes. Handlers run synchronously on the
// publishing goroutine and must not block. The returned func unsubscribes.
func (s *Service) Subscribe(fn func(ProductChanged)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) publish(ev ProductChanged) {
	s.mu.RLock()
	handlers := make([]func(ProductChanged), 0, len(s.subs))
	for _, fn := range s.subs {
		handlers = append(handlers, fn)
	}
	s.mu.RUnlock()
	for _, fn := range handlers {
		fn(ev)
	}
}
