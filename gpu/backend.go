package gpu

import (
	"fmt"
	"sync"

	stockham "github.com/cwbudde/algo-stockham"
)

// Backend is implemented by accelerator runtimes (CUDA, OpenCL, the CPU
// mock). It is responsible for device discovery and context creation.
type Backend interface {
	Info() BackendInfo
	Available() bool
	Devices() ([]DeviceInfo, error)
	NewContext(deviceIndex int) (Context, error)
}

// Context is a backend context tied to one device.
type Context interface {
	Device() DeviceInfo
	// NewBuffer allocates a device buffer of interleaved complex elements.
	NewBuffer(elemCount int, precision stockham.Precision) (Buffer, error)
	// NewStream creates an in-order execution queue.
	NewStream() (Stream, error)
	Close() error
}

// Buffer is a device buffer. It is usable wherever a stockham.Buffer is.
type Buffer interface {
	stockham.Buffer

	// Upload copies a []complex64 or []complex128 host slice to the device.
	Upload(src any) error
	// Download copies device contents into a host slice.
	Download(dst any) error
	Close() error
}

// Stream is an in-order queue that accepts stockham launches.
type Stream interface {
	stockham.Queue

	// Synchronize blocks until every submitted launch has completed and
	// returns the first execution error.
	Synchronize() error
	Close() error
}

var (
	backendMu sync.RWMutex
	backend   Backend
)

// RegisterBackend registers a backend. Passing nil clears it.
func RegisterBackend(b Backend) {
	backendMu.Lock()
	backend = b
	backendMu.Unlock()
}

// CurrentBackendInfo reports the registered backend, if any.
func CurrentBackendInfo() (BackendInfo, bool) {
	b := getBackend()
	if b == nil {
		return BackendInfo{}, false
	}

	return b.Info(), true
}

// DeviceEnvelope returns the envelope of a device of the registered backend.
func DeviceEnvelope(deviceIndex int) (stockham.Envelope, error) {
	dev, err := deviceInfo(getBackend(), deviceIndex)
	if err != nil {
		return stockham.Envelope{}, err
	}

	return dev.Envelope(), nil
}

func deviceInfo(b Backend, deviceIndex int) (DeviceInfo, error) {
	if b == nil {
		return DeviceInfo{}, ErrNoBackend
	}

	if !b.Available() {
		return DeviceInfo{}, ErrBackendUnavailable
	}

	devices, err := b.Devices()
	if err != nil {
		return DeviceInfo{}, err
	}

	if deviceIndex < 0 || deviceIndex >= len(devices) {
		return DeviceInfo{}, fmt.Errorf("%w: index %d of %d", ErrInvalidDevice, deviceIndex, len(devices))
	}

	return devices[deviceIndex], nil
}

func getBackend() Backend {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()

	return b
}
