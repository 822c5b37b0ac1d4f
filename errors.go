package loadable

import (
	"context"
	"errors"
)

// NetworkError reports a failed remote fetch.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// DecodingError reports a malformed remote payload.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string { return "decode: " + e.Err.Error() }
func (e *DecodingError) Unwrap() error { return e.Err }

// StorageError reports a local store failure.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// IsCancellation reports whether err is a silent pipeline termination rather
// than a failure to surface. Cancelled pipelines never transition their sink.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
