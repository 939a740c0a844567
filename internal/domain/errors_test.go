package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	sentinel := NewUserError("invoice must be a PDF")

	tests := []struct {
		name        string
		err         error
		wantKind    ErrorKind
		wantMessage string
	}{
		{"user sentinel", sentinel, KindUser, "invoice must be a PDF"},
		{"wrapped user", fmt.Errorf("failed to validate: %w", sentinel), KindUser, "invoice must be a PDF"},
		{"server with cause", NewServerError("could not store invoice").WithCause(errors.New("connection reset")), KindServer, "could not store invoice"},
		{"auth", NewAuthError("must be logged in"), KindAuth, "must be logged in"},
		{"plain error", errors.New("pq: relation does not exist"), KindServer, GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, KindOf(tt.err))
			assert.Equal(t, tt.wantMessage, MessageOf(tt.err))
		})
	}
}

func TestErrorIsMatchesAfterWithCause(t *testing.T) {
	sentinel := NewServerError("could not store invoice")
	err := sentinel.WithCause(errors.New("timeout"))

	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, NewUserError("could not store invoice"))
	assert.Contains(t, err.Error(), "timeout")
}
