package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/repository/user"

	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type UsersRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewUsersRepository(db *dbpg.DB, retries retry.Strategy) *UsersRepository {
	return &UsersRepository{
		db:      db,
		retries: retries,
	}
}

func (r *UsersRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	query := `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id, created_at`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	u := domain.User{Username: username, PasswordHash: passwordHash}
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, user.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return &u, nil
}

func (r *UsersRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password, created_at FROM users WHERE username = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	var u domain.User
	err = row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &u, nil
}
