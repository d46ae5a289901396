package application

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: fmt.Errorf("load booking: %w", ErrNotFound), want: "not_found"},
		{name: "confirmation", err: ErrConfirmationRequired, want: "confirmation_required"},
		{name: "transition", err: ErrTransitionNotAllowed, want: "transition_not_allowed"},
		{name: "credentials", err: ErrInvalidCredentials, want: "invalid_credentials"},
		{name: "expired", err: ErrSessionExpired, want: "session_expired"},
		{name: "revoked", err: ErrSessionRevoked, want: "session_revoked"},
		{name: "unauthorized", err: ErrUnauthorized, want: "unauthorized"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"date": "date is required"}}, want: "validation"},
		{name: "other", err: errors.New("disk full"), want: "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
