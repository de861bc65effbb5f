package gpu

import "fmt"

// stubBackend stands in for a device runtime whose bindings are not built.
// It registers and reports itself but never offers a device.
type stubBackend struct {
	name string
}

func (b stubBackend) Info() BackendInfo {
	return BackendInfo{
		Name:        b.name,
		Version:     "stub",
		Description: b.name + " runtime bindings are not built in",
	}
}

func (b stubBackend) Available() bool {
	return false
}

func (b stubBackend) Devices() ([]DeviceInfo, error) {
	return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, b.name)
}

func (b stubBackend) NewContext(int) (Context, error) {
	return nil, fmt.Errorf("%w: %s contexts", ErrNotImplemented, b.name)
}
