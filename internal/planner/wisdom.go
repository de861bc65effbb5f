package planner

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
	m "github.com/cwbudde/algo-stockham/internal/math"
)

// Wisdom remembers decompositions for lengths the curated table does not
// cover. Planners record every derived decomposition into it and consult it
// before factorizing, so an imported store pins the schedule of those
// lengths across runs. It is safe for concurrent use.
type Wisdom struct {
	mu      sync.RWMutex
	entries map[wisdomKey]Decomposition
}

type wisdomKey struct {
	length    int
	precision fftypes.Precision
}

// wisdomEntry is the on-disk form of one decomposition.
type wisdomEntry struct {
	Length             int    `yaml:"length"`
	Precision          string `yaml:"precision"`
	Radices            []int  `yaml:"radices,flow"`
	WorkGroupSize      int    `yaml:"workGroupSize"`
	TransformsPerGroup int    `yaml:"transformsPerGroup"`
}

// NewWisdom returns an empty store.
func NewWisdom() *Wisdom {
	return &Wisdom{entries: make(map[wisdomKey]Decomposition)}
}

// Lookup returns the stored decomposition for length at precision.
func (w *Wisdom) Lookup(length int, prec fftypes.Precision) (Decomposition, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	d, ok := w.entries[wisdomKey{length, prec}]
	if ok {
		d.Radices = slices.Clone(d.Radices)
	}

	return d, ok
}

// Record stores d for its length at precision, replacing any older entry.
func (w *Wisdom) Record(prec fftypes.Precision, d Decomposition) error {
	if err := checkDecomposition(d); err != nil {
		return err
	}

	d.Radices = slices.Clone(d.Radices)
	d.Curated = false

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entries == nil {
		w.entries = make(map[wisdomKey]Decomposition)
	}

	w.entries[wisdomKey{d.Length, prec}] = d

	return nil
}

// Len returns the number of stored decompositions.
func (w *Wisdom) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.entries)
}

// Clear removes every entry.
func (w *Wisdom) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	clear(w.entries)
}

// Export writes the store as a YAML list ordered by precision, then length.
func (w *Wisdom) Export(out io.Writer) error {
	w.mu.RLock()

	entries := make([]wisdomEntry, 0, len(w.entries))
	for k, d := range w.entries {
		entries = append(entries, wisdomEntry{
			Length:             k.length,
			Precision:          k.precision.String(),
			Radices:            slices.Clone(d.Radices),
			WorkGroupSize:      d.WorkGroupSize,
			TransformsPerGroup: d.TransformsPerGroup,
		})
	}

	w.mu.RUnlock()

	slices.SortFunc(entries, func(a, b wisdomEntry) int {
		return cmp.Or(cmp.Compare(a.Precision, b.Precision), cmp.Compare(a.Length, b.Length))
	})

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)

	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode wisdom: %w", err)
	}

	return enc.Close()
}

// Import merges a store written by Export. Nothing is merged when any
// entry is invalid.
func (w *Wisdom) Import(in io.Reader) error {
	var entries []wisdomEntry
	if err := yaml.NewDecoder(in).Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode wisdom: %v", fftypes.ErrArgument, err)
	}

	parsed := make(map[wisdomKey]Decomposition, len(entries))

	for i, e := range entries {
		prec, err := parsePrecision(e.Precision)
		if err != nil {
			return fmt.Errorf("wisdom entry %d: %w", i, err)
		}

		d := Decomposition{
			Length:             e.Length,
			Radices:            e.Radices,
			WorkGroupSize:      e.WorkGroupSize,
			TransformsPerGroup: e.TransformsPerGroup,
		}

		if err := checkDecomposition(d); err != nil {
			return fmt.Errorf("wisdom entry %d: %w", i, err)
		}

		parsed[wisdomKey{e.Length, prec}] = d
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entries == nil {
		w.entries = make(map[wisdomKey]Decomposition, len(parsed))
	}

	for k, d := range parsed {
		w.entries[k] = d
	}

	return nil
}

func checkDecomposition(d Decomposition) error {
	if len(d.Radices) == 0 {
		return fmt.Errorf("%w: length %d has no radices", fftypes.ErrArgument, d.Length)
	}

	for _, r := range d.Radices {
		if !Supported(r) {
			return fmt.Errorf("%w: radix %d in length %d", fftypes.ErrArgument, r, d.Length)
		}
	}

	if p := m.Product(d.Radices); p != d.Length {
		return fmt.Errorf("%w: radices %v multiply to %d, want %d", fftypes.ErrArgument, d.Radices, p, d.Length)
	}

	if d.WorkGroupSize < 1 || d.TransformsPerGroup < 1 {
		return fmt.Errorf("%w: geometry %d/%d for length %d",
			fftypes.ErrArgument, d.WorkGroupSize, d.TransformsPerGroup, d.Length)
	}

	return nil
}

func parsePrecision(s string) (fftypes.Precision, error) {
	switch s {
	case fftypes.PrecisionSingle.String():
		return fftypes.PrecisionSingle, nil
	case fftypes.PrecisionDouble.String():
		return fftypes.PrecisionDouble, nil
	default:
		return 0, fmt.Errorf("%w: precision %q", fftypes.ErrArgument, s)
	}
}
