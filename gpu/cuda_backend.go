//go:build cuda

package gpu

// RegisterCUDABackend registers the CUDA backend. Launch execution is not
// wired to the driver yet, so the backend reports itself unavailable.
func RegisterCUDABackend() {
	RegisterBackend(stubBackend{name: "cuda"})
}
