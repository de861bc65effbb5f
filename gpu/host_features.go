package gpu

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// hostComputeCap describes the host CPU the mock device runs on, e.g.
// "amd64+sse2+avx2+fma".
func hostComputeCap() string {
	parts := []string{runtime.GOARCH}

	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasSSE2 {
			parts = append(parts, "sse2")
		}

		if cpu.X86.HasAVX2 {
			parts = append(parts, "avx2")
		}

		if cpu.X86.HasFMA {
			parts = append(parts, "fma")
		}

		if cpu.X86.HasAVX512F {
			parts = append(parts, "avx512f")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			parts = append(parts, "asimd")
		}

		if cpu.ARM64.HasFPHP {
			parts = append(parts, "fphp")
		}
	}

	return strings.Join(parts, "+")
}
