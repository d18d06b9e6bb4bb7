package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySegmentAllocation(t *testing.T) {
	m := NewMemory()

	assert.Equal(t, NewRelocatable(0, 0), m.AddSegment())
	assert.Equal(t, NewRelocatable(1, 0), m.AddSegment())
	assert.Equal(t, 2, m.NumSegments())

	// Temporary segments count down and do not disturb the main space.
	assert.Equal(t, NewRelocatable(-1, 0), m.AddTempSegment())
	assert.Equal(t, NewRelocatable(-2, 0), m.AddTempSegment())
	assert.Equal(t, NewRelocatable(2, 0), m.AddSegment())
}

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	base := m.AddSegment()

	addr, err := base.AddOffset(4)
	require.NoError(t, err)
	require.NoError(t, m.Set(addr, NewUint64Value(99)))

	value, ok := m.Get(addr)
	require.True(t, ok)
	assert.True(t, value.Equal(NewUint64Value(99)))

	// Cells below the written one exist but are unset.
	_, ok = m.Get(base)
	assert.False(t, ok)

	// Unallocated segments reject writes.
	err = m.Set(NewRelocatable(7, 0), NewUint64Value(1))
	assert.ErrorIs(t, err, ErrUnallocatedSegment)
}

func TestMemoryWriteOnce(t *testing.T) {
	m := NewMemory()
	base := m.AddSegment()

	require.NoError(t, m.Set(base, NewUint64Value(5)))
	// Re-setting the same value is allowed.
	require.NoError(t, m.Set(base, NewUint64Value(5)))
	// A different value is an inconsistency.
	err := m.Set(base, NewUint64Value(6))
	assert.ErrorIs(t, err, ErrInconsistentMemory)
}

func TestMemoryTypedReads(t *testing.T) {
	m := NewMemory()
	base := m.AddSegment()
	require.NoError(t, m.Set(base, NewUint64Value(11)))
	ptrAddr, _ := base.AddOffset(1)
	require.NoError(t, m.Set(ptrAddr, NewAddressValue(NewRelocatable(0, 0))))

	felt, err := m.GetFelt(base)
	require.NoError(t, err)
	assert.Equal(t, newFelt(11), felt)

	_, err = m.GetFelt(ptrAddr)
	assert.ErrorIs(t, err, ErrExpectedFelt)
	_, err = m.GetRelocatable(base)
	assert.ErrorIs(t, err, ErrExpectedAddress)

	missing, _ := base.AddOffset(10)
	_, err = m.GetFelt(missing)
	assert.ErrorIs(t, err, ErrUnknownMemoryCell)
}

func TestMemoryGetRange(t *testing.T) {
	m := NewMemory()
	base := m.AddSegment()
	end, err := m.LoadData(base, []MaybeRelocatable{
		NewUint64Value(1), NewUint64Value(2), NewUint64Value(3),
	})
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(0, 3), end)

	values, err := m.GetRange(base, 3)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.True(t, values[2].Equal(NewUint64Value(3)))

	felts, err := m.GetFeltRange(base, 3)
	require.NoError(t, err)
	assert.Equal(t, newFelt(2), felts[1])

	// A gap anywhere in the range is an error.
	_, err = m.GetRange(base, 4)
	assert.ErrorIs(t, err, ErrUnknownMemoryCell)
}

func TestRangeCheckBound(t *testing.T) {
	bound := DefaultRangeCheckBound()

	rc := NewRangeCheck()
	require.NotNil(t, rc.Bound())
	assert.True(t, rc.Bound().Equal(bound))
	assert.Nil(t, NewUnboundedRangeCheck().Bound())
}
