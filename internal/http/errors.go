package http

import (
	"errors"
	"fmt"
)

// Sentinel errors for the decode path. They surface on the first traversal
// or lookup of a response, never from Execute.
var (
	// ErrNoBody is returned when decoding is attempted without a response body
	ErrNoBody = errors.New("restclient: a response must exist before it can be decoded")

	// ErrUndeterminedFormat is returned when neither the configured format nor
	// the Content-Type header yields a format identifier
	ErrUndeterminedFormat = errors.New("restclient: response format could not be determined")

	// ErrUnsupportedFormat is matched by UnsupportedFormatError
	ErrUnsupportedFormat = errors.New("restclient: unsupported format")

	// ErrImmutableResponse is returned by every write attempt on a decoded response
	ErrImmutableResponse = errors.New("restclient: decoded response data is immutable")
)

// UnsupportedFormatError reports a resolved format with no registered decoder.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("restclient: '%s' is not a supported format, register a decoder to handle this response", e.Format)
}

// Is lets errors.Is match ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// DecodeError wraps a failure returned by a registered decoder.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("restclient: decoding %s response: %v", e.Format, e.Err)
}

// Unwrap returns the decoder's error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
