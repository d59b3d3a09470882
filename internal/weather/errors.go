package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrUpdateFailed matches every failed refresh via errors.Is.
	ErrUpdateFailed = errors.New("update failed")

	// ErrRefreshInProgress is returned when a refresh is requested while
	// another one is still running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// Transport error kinds.
const (
	KindNetwork     = "network"
	KindStatus      = "status"
	KindCircuitOpen = "circuit_open"
	KindTimeout     = "timeout"
)

// TransportError is a network or HTTP level failure talking to the API.
type TransportError struct {
	Kind string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpdateFailedError is the single failure signal surfaced by a refresh.
type UpdateFailedError struct {
	Reason string
	Err    error
}

func (e *UpdateFailedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *UpdateFailedError) Unwrap() error { return e.Err }

func (e *UpdateFailedError) Is(target error) bool {
	return target == ErrUpdateFailed
}
