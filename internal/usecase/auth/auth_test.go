package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/repository/session/redis"
	"commission-tracker/internal/repository/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFunc         func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	return m.createFunc(ctx, username, passwordHash)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

type mockSessionStore struct {
	sessions map[string]int64
	ttls     map[string]time.Duration
	saveErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *mockSessionStore) Save(ctx context.Context, key string, userID int64, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[key] = userID
	m.ttls[key] = ttl
	return nil
}

func (m *mockSessionStore) Lookup(ctx context.Context, key string) (int64, error) {
	id, ok := m.sessions[key]
	if !ok {
		return 0, redis.ErrSessionNotFound
	}
	return id, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, key string) error {
	delete(m.sessions, key)
	return nil
}

func newUsecase(t *testing.T, users *mockUserRepository, sessions *mockSessionStore) *AuthUsecase {
	t.Helper()
	logger := zlog.Logger
	return NewAuthUsecase(users, sessions, "deersio", time.Hour, &logger)
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 4, Username: "admin", PasswordHash: string(hash)}
}

func TestLoginAndAuthenticate(t *testing.T) {
	u := storedUser(t, "correct horse")
	users := &mockUserRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			if username != u.Username {
				return nil, user.ErrUserNotFound
			}
			return u, nil
		},
	}
	sessions := newMockSessionStore()
	uc := newUsecase(t, users, sessions)

	key, err := uc.Login(context.Background(), "admin", "correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "deersio"))
	assert.Equal(t, time.Hour, sessions.ttls[key])

	id, err := uc.Authenticate(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	require.NoError(t, uc.Logout(context.Background(), key))
	_, err = uc.Authenticate(context.Background(), key)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
}

func TestLogin_Rejections(t *testing.T) {
	u := storedUser(t, "correct horse")
	users := &mockUserRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			switch username {
			case "admin":
				return u, nil
			case "broken":
				return nil, errors.New("connection reset")
			default:
				return nil, user.ErrUserNotFound
			}
		},
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"wrong password", "admin", "battery staple", ErrInvalidCredentials},
		{"unknown user", "nobody", "correct horse", ErrInvalidCredentials},
		{"repository failure", "broken", "correct horse", ErrSessionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUsecase(t, users, newMockSessionStore())
			_, err := uc.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_SessionStoreFailure(t *testing.T) {
	u := storedUser(t, "correct horse")
	users := &mockUserRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) { return u, nil },
	}
	sessions := newMockSessionStore()
	sessions.saveErr = errors.New("redis down")

	_, err := newUsecase(t, users, sessions).Login(context.Background(), "admin", "correct horse")
	assert.ErrorIs(t, err, ErrSessionFailure)
	assert.Equal(t, domain.KindServer, domain.KindOf(err))
}

func TestAuthenticate_RejectsForeignKeys(t *testing.T) {
	sessions := newMockSessionStore()
	sessions.sessions["other:123"] = 1
	uc := newUsecase(t, &mockUserRepository{}, sessions)

	_, err := uc.Authenticate(context.Background(), "other:123")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = uc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCreateUser(t *testing.T) {
	var savedHash string
	users := &mockUserRepository{
		createFunc: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if username == "taken" {
				return nil, user.ErrDuplicateUsername
			}
			savedHash = passwordHash
			return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
		},
	}
	uc := newUsecase(t, users, newMockSessionStore())

	created, err := uc.CreateUser(context.Background(), " admin ", "long enough")
	require.NoError(t, err)
	assert.Equal(t, "admin", created.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedHash), []byte("long enough")))

	_, err = uc.CreateUser(context.Background(), "taken", "long enough")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = uc.CreateUser(context.Background(), "admin", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = uc.CreateUser(context.Background(), "", "long enough")
	assert.ErrorIs(t, err, ErrInvalidUser)
}
