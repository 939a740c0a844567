package middleware

import (
	"context"
	"net/http"
	"time"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/http-server/handler/response"

	"github.com/wb-go/wbf/zlog"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

var ErrNotLoggedIn = domain.NewAuthError("must be logged in")

type authenticator interface {
	Authenticate(ctx context.Context, key string) (int64, error)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		zlog.Logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Msg("Request started")

		next.ServeHTTP(rec, r)

		zlog.Logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				zlog.Logger.Error().
					Interface("error", err).
					Str("path", r.URL.Path).
					Msg("Panic recovered")

				response.Error(w, &zlog.Logger, domain.NewServerError(domain.GenericMessage))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequireSession rejects requests without a live session cookie and stores
// the session's user ID in the request context.
func RequireSession(auth authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				response.Error(w, &zlog.Logger, ErrNotLoggedIn.WithCause(err))
				return
			}

			userID, err := auth.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				response.Error(w, &zlog.Logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
