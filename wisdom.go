package stockham

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-stockham/internal/planner"
)

// Wisdom stores the decompositions the planner derived for lengths outside
// the curated radix table. Set PlanOptions.Wisdom to record into it and to
// replay earlier decisions; save and load it with ExportWisdom and
// ImportWisdom.
type Wisdom = planner.Wisdom

// NewWisdom creates an empty wisdom store.
func NewWisdom() *Wisdom {
	return planner.NewWisdom()
}

// ImportWisdom merges a wisdom file written by ExportWisdom into w.
func ImportWisdom(filename string, w *Wisdom) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open wisdom file: %w", err)
	}

	defer f.Close()

	if err := w.Import(f); err != nil {
		return fmt.Errorf("import wisdom: %w", err)
	}

	return nil
}

// ExportWisdom writes w to filename.
func ExportWisdom(filename string, w *Wisdom) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create wisdom file: %w", err)
	}

	if err := w.Export(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export wisdom: %w", err)
	}

	return f.Close()
}
