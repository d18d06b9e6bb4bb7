package vm

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// ---------------------------------------------------------------------------
// Memory: segmented write-once cell arena
// ---------------------------------------------------------------------------

// Memory errors.
var (
	ErrUnallocatedSegment = errors.New("write to unallocated segment")
	ErrInconsistentMemory = errors.New("inconsistent memory: cell already holds a different value")
	ErrUnknownMemoryCell  = errors.New("unknown memory cell")
)

// Memory is the VM's linear, segmented memory: a growable cell vector per
// segment. Main segments have indices 0, 1, 2, ...; temporary segments have
// indices -1, -2, ... and are merged into the main space only at relocation
// time, which is outside this package's concern.
//
// Cells are write-once: setting an occupied cell to a different value is an
// inconsistency error. Reading an unset cell is a miss, not an error.
type Memory struct {
	segments        map[int][]*MaybeRelocatable
	numSegments     int
	numTempSegments int
}

// NewMemory creates an empty memory with no segments.
func NewMemory() *Memory {
	return &Memory{segments: make(map[int][]*MaybeRelocatable)}
}

// AddSegment allocates a fresh main segment and returns its base address.
func (m *Memory) AddSegment() Relocatable {
	index := m.numSegments
	m.numSegments++
	m.segments[index] = nil
	return NewRelocatable(index, 0)
}

// AddTempSegment allocates a fresh temporary segment (negative index) and
// returns its base address.
func (m *Memory) AddTempSegment() Relocatable {
	m.numTempSegments++
	index := -m.numTempSegments
	m.segments[index] = nil
	return NewRelocatable(index, 0)
}

// NumSegments returns the number of main segments allocated so far.
func (m *Memory) NumSegments() int {
	return m.numSegments
}

// Get returns the cell at addr, or ok=false if the cell has never been set.
func (m *Memory) Get(addr Relocatable) (MaybeRelocatable, bool) {
	segment, ok := m.segments[addr.SegmentIndex]
	if !ok || addr.Offset >= uint64(len(segment)) {
		return MaybeRelocatable{}, false
	}
	cell := segment[addr.Offset]
	if cell == nil {
		return MaybeRelocatable{}, false
	}
	return *cell, true
}

// Set writes a value to addr. The segment must have been allocated, and an
// occupied cell may only be re-set to an equal value.
func (m *Memory) Set(addr Relocatable, value MaybeRelocatable) error {
	segment, ok := m.segments[addr.SegmentIndex]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnallocatedSegment, addr)
	}
	for uint64(len(segment)) <= addr.Offset {
		segment = append(segment, nil)
	}
	if cell := segment[addr.Offset]; cell != nil && !cell.Equal(value) {
		return fmt.Errorf("%w: %s holds %s, refusing %s", ErrInconsistentMemory, addr, cell, value)
	}
	v := value
	segment[addr.Offset] = &v
	m.segments[addr.SegmentIndex] = segment
	return nil
}

// GetFelt reads a field element from addr, failing on a miss or an address.
func (m *Memory) GetFelt(addr Relocatable) (fp.Element, error) {
	value, ok := m.Get(addr)
	if !ok {
		return fp.Element{}, fmt.Errorf("%w: %s", ErrUnknownMemoryCell, addr)
	}
	felt, err := value.Felt()
	if err != nil {
		return fp.Element{}, fmt.Errorf("%s: %w", addr, err)
	}
	return felt, nil
}

// GetRelocatable reads an address from addr, failing on a miss or a felt.
func (m *Memory) GetRelocatable(addr Relocatable) (Relocatable, error) {
	value, ok := m.Get(addr)
	if !ok {
		return Relocatable{}, fmt.Errorf("%w: %s", ErrUnknownMemoryCell, addr)
	}
	rel, err := value.Address()
	if err != nil {
		return Relocatable{}, fmt.Errorf("%s: %w", addr, err)
	}
	return rel, nil
}

// GetRange reads count consecutive cells starting at base. Every cell in the
// range must be set.
func (m *Memory) GetRange(base Relocatable, count uint64) ([]MaybeRelocatable, error) {
	values := make([]MaybeRelocatable, 0, count)
	for i := uint64(0); i < count; i++ {
		addr, err := base.AddOffset(int64(i))
		if err != nil {
			return nil, err
		}
		value, ok := m.Get(addr)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMemoryCell, addr)
		}
		values = append(values, value)
	}
	return values, nil
}

// GetFeltRange reads count consecutive field elements starting at base.
func (m *Memory) GetFeltRange(base Relocatable, count uint64) ([]fp.Element, error) {
	values, err := m.GetRange(base, count)
	if err != nil {
		return nil, err
	}
	felts := make([]fp.Element, len(values))
	for i, value := range values {
		felt, err := value.Felt()
		if err != nil {
			return nil, err
		}
		felts[i] = felt
	}
	return felts, nil
}

// LoadData writes a run of values starting at base and returns the address
// one past the last written cell.
func (m *Memory) LoadData(base Relocatable, data []MaybeRelocatable) (Relocatable, error) {
	for i, value := range data {
		addr, err := base.AddOffset(int64(i))
		if err != nil {
			return Relocatable{}, err
		}
		if err := m.Set(addr, value); err != nil {
			return Relocatable{}, err
		}
	}
	return base.AddOffset(int64(len(data)))
}
