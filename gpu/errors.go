package gpu

import "errors"

var (
	// ErrNoBackend is returned when no backend is registered.
	ErrNoBackend = errors.New("stockham/gpu: no backend registered")

	// ErrBackendUnavailable is returned when the backend is registered but not
	// usable on this system (no device, missing driver).
	ErrBackendUnavailable = errors.New("stockham/gpu: backend unavailable")

	// ErrNotImplemented is returned by stubbed backends and by layouts the
	// mock runtime does not execute.
	ErrNotImplemented = errors.New("stockham/gpu: not implemented")

	// ErrInvalidDevice is returned for an out-of-range device index.
	ErrInvalidDevice = errors.New("stockham/gpu: invalid device")

	// ErrNilSlice is returned when dst or src is nil.
	ErrNilSlice = errors.New("stockham/gpu: nil slice")

	// ErrLengthMismatch is returned when a host slice or device buffer is
	// too short.
	ErrLengthMismatch = errors.New("stockham/gpu: length mismatch")

	// ErrPrecisionMismatch is returned when a buffer's precision differs
	// from the precision of the plan or host data.
	ErrPrecisionMismatch = errors.New("stockham/gpu: precision mismatch")

	// ErrClosed is returned for use of a closed buffer, stream or executor.
	ErrClosed = errors.New("stockham/gpu: closed")
)
