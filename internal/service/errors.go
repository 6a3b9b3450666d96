package service

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every error caused by a request the caller has to
// fix before trying again.
var ErrInvalidInput = errors.New("invalid input")

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidf(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}
