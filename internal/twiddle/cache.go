package twiddle

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
)

type tableKey struct {
	radix     int
	direction fftypes.Direction
}

type tableEntry struct {
	once  sync.Once
	table *Table
}

// Cache maps (radix, direction) to a shared Table. Entries are inserted if
// absent and populated exactly once; they are never evicted, so tables
// outlive the plans that reference them.
type Cache struct {
	m        sync.Map // map[tableKey]*tableEntry
	computed atomic.Int64
}

// Get returns the table for radix and direction, computing it on first use.
func (c *Cache) Get(radix int, dir fftypes.Direction) (*Table, error) {
	if radix < 2 {
		return nil, fmt.Errorf("%w: radix %d", fftypes.ErrArgument, radix)
	}

	if !dir.Valid() {
		return nil, fmt.Errorf("%w: direction %d", fftypes.ErrArgument, dir)
	}

	key := tableKey{radix: radix, direction: dir}

	v, ok := c.m.Load(key)
	if !ok {
		v, _ = c.m.LoadOrStore(key, &tableEntry{})
	}

	entry := v.(*tableEntry)
	entry.once.Do(func() {
		entry.table = newTable(radix, dir)
		c.computed.Add(1)
	})

	return entry.table, nil
}

// Acquire returns the table like Get and records one more reference to it.
func (c *Cache) Acquire(radix int, dir fftypes.Direction) (*Table, error) {
	t, err := c.Get(radix, dir)
	if err != nil {
		return nil, err
	}

	t.refs.Add(1)

	return t, nil
}

// Release drops one reference taken by Acquire. The table stays cached.
func (c *Cache) Release(t *Table) {
	if t == nil {
		return
	}

	if t.refs.Add(-1) < 0 {
		t.refs.Store(0)
	}
}

// Computed reports how many tables this cache has generated.
func (c *Cache) Computed() int {
	return int(c.computed.Load())
}

// Len reports the number of cached tables.
func (c *Cache) Len() int {
	n := 0

	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

// Default is the process-wide cache used by plans.
var Default = &Cache{}

// GetTable returns the process-wide table for radix and direction.
func GetTable(radix int, dir fftypes.Direction) (*Table, error) {
	return Default.Get(radix, dir)
}
