package vm

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFelt(v uint64) fp.Element {
	var f fp.Element
	f.SetUint64(v)
	return f
}

func TestRelocatableAddOffset(t *testing.T) {
	r := NewRelocatable(2, 10)

	forward, err := r.AddOffset(5)
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(2, 15), forward)

	back, err := r.AddOffset(-10)
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(2, 0), back)

	_, err = r.AddOffset(-11)
	assert.ErrorIs(t, err, ErrOffsetUnderflow)
}

func TestRelocatableAddFelt(t *testing.T) {
	r := NewRelocatable(0, 3)

	f := newFelt(4)
	moved, err := r.AddFelt(&f)
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(0, 7), moved)

	// A felt beyond the addressable range cannot be an offset.
	var huge fp.Element
	huge.SetString("340282366920938463463374607431768211456") // 2**128
	_, err = r.AddFelt(&huge)
	assert.ErrorIs(t, err, ErrOffsetOverflow)
}

func TestRelocatableSub(t *testing.T) {
	a := NewRelocatable(1, 9)
	b := NewRelocatable(1, 3)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), diff)

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrOffsetUnderflow)

	_, err = a.Sub(NewRelocatable(2, 3))
	assert.ErrorIs(t, err, ErrSegmentMismatch)
}

func TestMaybeRelocatableAccessors(t *testing.T) {
	f := newFelt(17)
	feltValue := NewFeltValue(&f)
	addrValue := NewAddressValue(NewRelocatable(-1, 2))

	got, err := feltValue.Felt()
	require.NoError(t, err)
	assert.True(t, got.Equal(&f))
	_, err = feltValue.Address()
	assert.ErrorIs(t, err, ErrExpectedAddress)

	addr, err := addrValue.Address()
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(-1, 2), addr)
	_, err = addrValue.Felt()
	assert.ErrorIs(t, err, ErrExpectedFelt)
}

func TestMaybeRelocatableAdd(t *testing.T) {
	a := NewUint64Value(10)
	b := NewUint64Value(32)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(NewUint64Value(42)))

	addr := NewAddressValue(NewRelocatable(3, 1))
	moved, err := addr.Add(NewUint64Value(4))
	require.NoError(t, err)
	assert.True(t, moved.Equal(NewAddressValue(NewRelocatable(3, 5))))

	// felt + address and address + address are invalid.
	_, err = a.Add(addr)
	assert.Error(t, err)
	_, err = addr.Add(addr)
	assert.Error(t, err)
}

func TestMaybeRelocatableEqual(t *testing.T) {
	assert.True(t, NewUint64Value(7).Equal(NewUint64Value(7)))
	assert.False(t, NewUint64Value(7).Equal(NewUint64Value(8)))
	assert.False(t, NewUint64Value(7).Equal(NewAddressValue(NewRelocatable(0, 7))))
	assert.True(t, NewAddressValue(NewRelocatable(2, 0)).Equal(NewAddressValue(NewRelocatable(2, 0))))
}
