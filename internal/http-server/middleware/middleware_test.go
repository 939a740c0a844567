package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"commission-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
)

type mockAuthenticator struct {
	authenticateFunc func(ctx context.Context, key string) (int64, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, key string) (int64, error) {
	return m.authenticateFunc(ctx, key)
}

func TestRequireSession(t *testing.T) {
	auth := &mockAuthenticator{
		authenticateFunc: func(ctx context.Context, key string) (int64, error) {
			if key == "deersio-valid" {
				return 42, nil
			}
			return 0, domain.NewAuthError("must be logged in")
		},
	}

	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireSession(auth, "sessionID")(next)

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantUser   int64
	}{
		{"no cookie", nil, http.StatusUnauthorized, 0},
		{"unknown session", &http.Cookie{Name: "sessionID", Value: "deersio-gone"}, http.StatusUnauthorized, 0},
		{"valid session", &http.Cookie{Name: "sessionID", Value: "deersio-valid"}, http.StatusNoContent, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodDelete, "/api/commissions/1", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "must be logged in")
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.GenericMessage)
}
