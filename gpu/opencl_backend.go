//go:build opencl

package gpu

// RegisterOpenCLBackend registers the OpenCL backend. Launch execution is
// not wired to the driver yet, so the backend reports itself unavailable.
func RegisterOpenCLBackend() {
	RegisterBackend(stubBackend{name: "opencl"})
}
