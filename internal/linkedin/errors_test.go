package linkedin

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"auth", &AuthError{Message: "revoked"}, KindAuth},
		{"publish", &PublishError{StatusCode: 422, Message: "duplicate"}, KindPublish},
		{"not found", &NotFoundError{Resource: "account", ID: 7}, KindNotFound},
		{"transport", &TransportError{Op: "publish", Err: context.DeadlineExceeded}, KindTransport},
		{"wrapped", fmt.Errorf("sweep: %w", &PublishError{StatusCode: 500}), KindPublish},
		{"plain", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if msg := (&NotFoundError{Resource: "account", ID: 3}).Error(); msg != "account not found" {
		t.Errorf("unexpected not found message %q", msg)
	}
	if msg := ErrNoRefreshToken.Error(); msg != "credentials expired, no refresh available" {
		t.Errorf("unexpected auth message %q", msg)
	}

	terr := &TransportError{Op: "refresh token", Err: context.DeadlineExceeded}
	if !errors.Is(terr, context.DeadlineExceeded) {
		t.Error("expected transport error to unwrap to deadline exceeded")
	}
}
