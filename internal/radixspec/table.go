// Package radixspec holds the curated, hand-tuned radix decompositions for
// common transform lengths, one read-only table per precision.
package radixspec

import (
	"fmt"
	"slices"
	"sync"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
	m "github.com/cwbudde/algo-stockham/internal/math"
)

// MaxPasses bounds the pass count of every curated record.
const MaxPasses = 12

// Record is one curated decomposition.
type Record struct {
	Length             int
	WorkGroupSize      int
	TransformsPerGroup int
	Radices            []int
}

// Passes returns the number of passes of the record.
func (r Record) Passes() int {
	return len(r.Radices)
}

// Table maps lengths to curated records. It is never mutated after
// construction and may be read concurrently without locking.
type Table struct {
	precision fftypes.Precision
	records   map[int]Record
}

// Precision returns the precision the table was built for.
func (t *Table) Precision() fftypes.Precision {
	return t.precision
}

// Lookup returns the record for an exact length match. The returned radix
// slice is a copy.
func (t *Table) Lookup(length int) (Record, bool) {
	rec, ok := t.records[length]
	if !ok {
		return Record{}, false
	}

	rec.Radices = slices.Clone(rec.Radices)

	return rec, true
}

// Lengths returns the curated lengths in ascending order.
func (t *Table) Lengths() []int {
	lengths := make([]int, 0, len(t.records))
	for n := range t.records {
		lengths = append(lengths, n)
	}

	slices.Sort(lengths)

	return lengths
}

// Rows shared by both precisions.
//
//	length, work group size, transforms per group, radices
var commonRows = []Record{
	{2048, 256, 1, []int{8, 8, 8, 4}},
	{512, 64, 1, []int{8, 8, 8}},
	{256, 64, 1, []int{4, 4, 4, 4}},
	{64, 64, 4, []int{4, 4, 4}},
	{32, 64, 16, []int{8, 4}},
	{16, 64, 16, []int{4, 4}},
	{4, 64, 32, []int{2, 2}},
	{2, 64, 64, []int{2}},
}

var singleRows = []Record{
	{4096, 256, 1, []int{8, 8, 8, 8}},
	{1024, 128, 1, []int{8, 8, 4, 4}},
	{128, 64, 4, []int{8, 4, 4}},
	{8, 64, 32, []int{4, 2}},
}

// The all-radix-2 chain {128, 64, 1, [2 2 2 2 2 2 2]} was tried for double
// precision and is deliberately absent; do not add it back without a benchmark.
var doubleRows = []Record{
	{1024, 128, 1, []int{8, 8, 4, 4}},
	{128, 64, 4, []int{8, 8, 2}},
	{8, 64, 16, []int{2, 2, 2}},
}

var (
	singleTable = sync.OnceValue(func() *Table { return build(fftypes.PrecisionSingle, singleRows) })
	doubleTable = sync.OnceValue(func() *Table { return build(fftypes.PrecisionDouble, doubleRows) })
)

// For returns the table for a precision, building it on first use.
// It returns nil for an unknown precision.
func For(p fftypes.Precision) *Table {
	switch p {
	case fftypes.PrecisionSingle:
		return singleTable()
	case fftypes.PrecisionDouble:
		return doubleTable()
	default:
		return nil
	}
}

// Lookup is shorthand for For(p).Lookup(length).
func Lookup(length int, p fftypes.Precision) (Record, bool) {
	t := For(p)
	if t == nil {
		return Record{}, false
	}

	return t.Lookup(length)
}

func build(p fftypes.Precision, rows []Record) *Table {
	t := &Table{
		precision: p,
		records:   make(map[int]Record, len(commonRows)+len(rows)),
	}

	// Precision-specific rows override common ones.
	for _, set := range [][]Record{commonRows, rows} {
		for _, rec := range set {
			if err := validate(rec); err != nil {
				panic(err)
			}

			rec.Radices = slices.Clone(rec.Radices)
			t.records[rec.Length] = rec
		}
	}

	return t
}

func validate(rec Record) error {
	if rec.Passes() == 0 || rec.Passes() > MaxPasses {
		return fmt.Errorf("radixspec: length %d has %d passes", rec.Length, rec.Passes())
	}

	if p := m.Product(rec.Radices); p != rec.Length {
		return fmt.Errorf("radixspec: length %d radices %v multiply to %d", rec.Length, rec.Radices, p)
	}

	if rec.WorkGroupSize < 1 || rec.TransformsPerGroup < 1 {
		return fmt.Errorf("radixspec: length %d has empty geometry", rec.Length)
	}

	return nil
}
