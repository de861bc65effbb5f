package cli

import (
	"fmt"
	"os"
	"strconv"

	stockham "github.com/cwbudde/algo-stockham"
)

// Environment variables that override the default device envelope.
const (
	envLocalMemBytes    = "STOCKHAM_LDS_BYTES"
	envMaxWorkGroupSize = "STOCKHAM_MAX_WGS"
)

// defaultEnvelope returns stockham.DefaultEnvelope with any environment
// overrides applied.
func defaultEnvelope() (stockham.Envelope, error) {
	env := stockham.DefaultEnvelope

	var err error

	if env.LocalMemBytes, err = envInt(envLocalMemBytes, env.LocalMemBytes); err != nil {
		return stockham.Envelope{}, err
	}

	if env.MaxWorkGroupSize, err = envInt(envMaxWorkGroupSize, env.MaxWorkGroupSize); err != nil {
		return stockham.Envelope{}, err
	}

	return env, nil
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s=%q: want a positive integer", name, raw)
	}

	return v, nil
}

func parsePrecision(s string) (stockham.Precision, error) {
	switch s {
	case "single", "float", "complex64":
		return stockham.PrecisionSingle, nil
	case "double", "complex128":
		return stockham.PrecisionDouble, nil
	default:
		return 0, fmt.Errorf("unknown precision %q (want single or double)", s)
	}
}

func parseDirection(s string) (stockham.Direction, error) {
	switch s {
	case "forward", "fwd":
		return stockham.DirectionForward, nil
	case "backward", "inverse", "bwd":
		return stockham.DirectionBackward, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want forward or backward)", s)
	}
}
