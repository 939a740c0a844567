package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/repository/session/redis"
	"commission-tracker/internal/repository/user"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthUsecase struct {
	users     userRepository
	sessions  sessionStore
	keyPrefix string
	ttl       time.Duration
	logger    *zlog.Zerolog
}

func NewAuthUsecase(users userRepository, sessions sessionStore, keyPrefix string, ttl time.Duration, logger *zlog.Zerolog) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		sessions:  sessions,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Login checks the credentials and returns a new session key.
func (u *AuthUsecase) Login(ctx context.Context, username, password string) (string, error) {
	found, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			u.logger.Error().Err(err).Str("username", username).Msg("Failed to load user")
			return "", ErrSessionFailure.WithCause(err)
		}
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		u.logger.Warn().Str("username", username).Msg("Rejected login")
		return "", ErrInvalidCredentials
	}

	key := u.keyPrefix + uuid.New().String()
	if err := u.sessions.Save(ctx, key, found.ID, u.ttl); err != nil {
		u.logger.Error().Err(err).Int64("user_id", found.ID).Msg("Failed to save session")
		return "", ErrSessionFailure.WithCause(err)
	}

	u.logger.Info().Int64("user_id", found.ID).Msg("User logged in")
	return key, nil
}

func (u *AuthUsecase) Logout(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := u.sessions.Delete(ctx, key); err != nil {
		u.logger.Error().Err(err).Msg("Failed to delete session")
		return ErrLogoutFailure.WithCause(err)
	}
	return nil
}

// Authenticate resolves a session key to the user it belongs to.
func (u *AuthUsecase) Authenticate(ctx context.Context, key string) (int64, error) {
	if key == "" || !strings.HasPrefix(key, u.keyPrefix) {
		return 0, ErrNotLoggedIn
	}

	userID, err := u.sessions.Lookup(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrSessionNotFound) {
			u.logger.Error().Err(err).Msg("Failed to look up session")
		}
		return 0, ErrNotLoggedIn.WithCause(err)
	}

	return userID, nil
}

func (u *AuthUsecase) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidUser
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrCreateUser.WithCause(err)
	}

	created, err := u.users.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		u.logger.Error().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, ErrCreateUser.WithCause(err)
	}

	u.logger.Info().Int64("user_id", created.ID).Str("username", username).Msg("User created")
	return created, nil
}
