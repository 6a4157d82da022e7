package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

const defaultTTL = 30 * 24 * time.Hour

// Service hands out anonymous shopping sessions. A session owns one cart, and
// its token outlives the process as long as the token store does.
type Service struct {
	tokens tokenrepo.Repository
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func New(tokens tokenrepo.Repository, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tokens: tokens, ttl: ttl, now: time.Now, logger: logger.Named("sessions")}
}

// Issue starts a new session and returns its bearer token.
func (s *Service) Issue(ctx context.Context) (token, sessionID string, err error) {
	token, err = randomToken()
	if err != nil {
		return "", "", err
	}
	sessionID = uuid.NewString()
	now := s.now().UTC()
	if err := s.tokens.Create(ctx, tokenrepo.Token{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}); err != nil {
		return "", "", fmt.Errorf("store session token: %w", err)
	}
	return token, sessionID, nil
}

// Lookup resolves a token to its session id. Expired tokens are deleted on sight.
func (s *Service) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	stored, err := s.tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if stored.Expired(s.now()) {
		if err := s.tokens.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("expired token cleanup failed", zap.Error(err))
		}
		return "", ErrInvalidToken
	}
	return stored.SessionID, nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
