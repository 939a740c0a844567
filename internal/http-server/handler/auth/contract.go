package auth

import "context"

type authUsecase interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, key string) error
}
