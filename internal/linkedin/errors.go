package linkedin

import (
	"errors"
	"fmt"
)

// Kind classifies why publishing a post failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindPublish
	KindNotFound
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindPublish:
		return "publish"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// AuthError means the credential is missing, expired or revoked. The owning
// account stays unusable until the user reconnects it.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }
func (e *AuthError) Kind() Kind    { return KindAuth }

// PublishError carries the status and message of a rejected publish request.
type PublishError struct {
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("linkedin rejected post (status %d): %s", e.StatusCode, e.Message)
}

func (e *PublishError) Kind() Kind { return KindPublish }

// NotFoundError is raised when a record the publish depends on is missing locally.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Kind() Kind { return KindNotFound }

// TransportError wraps network failures and timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() Kind    { return KindTransport }

var ErrNoRefreshToken = &AuthError{Message: "credentials expired, no refresh available"}

// KindOf returns the failure kind of err, KindUnknown when it is not part of
// the taxonomy.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}
