package usecase

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInternal          = errors.New("internal error")
	ErrJobNotFound       = errors.New("job not found")
	ErrWorkerNotFound    = errors.New("worker not found")
	ErrMatchNotFound     = errors.New("match not found")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// internalErr keeps the cause for logs while classifying it as ErrInternal.
func internalErr(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrInternal)
}

func invalidInput(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}
