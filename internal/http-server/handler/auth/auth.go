package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/http-server/handler/response"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

var ErrInvalidLogin = domain.NewUserError("username and password are required")

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// CookieOptions controls the session cookie written on login.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	usecase  authUsecase
	cookie   CookieOptions
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewAuthHandler(usecase authUsecase, cookie CookieOptions, logger *zlog.Zerolog) *AuthHandler {
	return &AuthHandler{
		usecase:  usecase,
		cookie:   cookie,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, h.logger, ErrInvalidLogin.WithCause(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, h.logger, ErrInvalidLogin.WithCause(err))
		return
	}

	key, err := h.usecase.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    key,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.usecase.Logout(r.Context(), cookie.Value); err != nil {
			response.Error(w, h.logger, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
