package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"commission-tracker/internal/config"

	wbredis "github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/retry"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps session keys mapped to user IDs.
type SessionStore struct {
	client  *wbredis.Client
	retries retry.Strategy
}

func NewSessionStore(cfg *config.Config) *SessionStore {
	return &SessionStore{
		client:  wbredis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
		retries: cfg.DefaultRetryStrategy(),
	}
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) Save(ctx context.Context, key string, userID int64, ttl time.Duration) error {
	err := retry.Do(func() error {
		return s.client.SetWithExpiration(ctx, key, userID, ttl)
	}, s.retries)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Lookup reads once; a missing key means the session expired or never existed.
func (s *SessionStore) Lookup(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key)
	if errors.Is(err, wbredis.NoMatches) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.DelWithRetry(ctx, s.retries, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}
