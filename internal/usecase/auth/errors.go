package auth

import "commission-tracker/internal/domain"

var (
	ErrInvalidCredentials = domain.NewAuthError("invalid username or password")
	ErrNotLoggedIn        = domain.NewAuthError("must be logged in")
	ErrSessionFailure     = domain.NewServerError("could not start session")
	ErrLogoutFailure      = domain.NewServerError("could not end session")
	ErrInvalidUser        = domain.NewUserError("username and password are required")
	ErrPasswordTooShort   = domain.NewUserError("password must be at least 8 characters")
	ErrUsernameTaken      = domain.NewUserError("username already taken")
	ErrCreateUser         = domain.NewServerError("could not create user")
)
