package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when expression text fails the character allow-list or the adjacency check.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyntax is matched by every SyntaxError.
	ErrSyntax = errors.New("expression syntax error")

	// ErrNoResult indicates that compilation reached no verdict: the worker timed out,
	// was cancelled, or died before answering.
	ErrNoResult = errors.New("compilation produced no result")

	// ErrTimeout means the worker did not answer within the compile timeout and was killed.
	ErrTimeout = fmt.Errorf("%w: timed out", ErrNoResult)

	// ErrCanceled means the caller's context ended while a worker was running and it was killed.
	ErrCanceled = fmt.Errorf("%w: canceled", ErrNoResult)

	// ErrWorkerCrashed means the worker exited without a well-formed reply.
	ErrWorkerCrashed = fmt.Errorf("%w: worker crashed", ErrNoResult)

	// ErrNoField is returned by the composite build when no usable function could be derived.
	ErrNoField = errors.New("no usable field")

	// ErrSandbox is returned when the isolated worker cannot be started at all.
	ErrSandbox = errors.New("sandbox unavailable")

	// ErrPointDomain is matched by numeric failures at a single grid point.
	ErrPointDomain = errors.New("point outside function domain")

	// ErrMissingFunction is returned when a field is requested before a function was attached.
	ErrMissingFunction = errors.New("no function attached")

	// ErrInvalidGrid indicates an empty or non-finite grid axis.
	ErrInvalidGrid = errors.New("invalid grid")
)

// InvalidInputError reports raw text rejected by the input validator.
type InvalidInputError struct {
	Input  string // The rejected text
	Reason string // Which check failed
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("cannot parse entered equation %q: %s", e.Input, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// SyntaxError reports validated text that the symbolic parser could not accept.
type SyntaxError struct {
	Expression string
	Pos        int // Byte offset of the offending token
	Msg        string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q at offset %d: %s", e.Expression, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
