package auth

import (
	"context"
	"time"

	"commission-tracker/internal/domain"
)

type userRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

type sessionStore interface {
	Save(ctx context.Context, key string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}
