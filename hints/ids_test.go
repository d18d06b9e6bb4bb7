package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/cairn/vm"
)

func TestIdsFpRelativeValue(t *testing.T) {
	m := newTestMachine()
	setCell(t, m, 2, vm.NewUint64Value(42))
	ids := NewIdsManager(fpRefs(map[string]int{"a": 2}), ApTracking{})

	felt, err := ids.GetFelt("a", m)
	require.NoError(t, err)
	assert.Equal(t, newFelt(42), felt)

	// Resolution is pure: asking again yields the same result.
	again, err := ids.GetFelt("a", m)
	require.NoError(t, err)
	assert.Equal(t, felt, again)
}

func TestIdsUnknownIdentifier(t *testing.T) {
	m := newTestMachine()
	ids := NewIdsManager(fpRefs(map[string]int{"a": 0}), ApTracking{})

	_, err := ids.Get("missing", m)
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestIdsApTrackingCorrection(t *testing.T) {
	m := newTestMachine()
	// AP started the group at offset 1 and is now at offset 4; the
	// reference was compiled against the older AP.
	var err error
	m.Ctx.Ap, err = vm.NewRelocatable(1, 0).AddOffset(5)
	require.NoError(t, err)
	setCell(t, m, 2, vm.NewUint64Value(7)) // ap - 3 == fp + 2

	refs := map[string]HintReference{
		"x": NewReference(RegisterAp, 0, true, &ApTracking{Group: 3, Offset: 1}),
	}
	ids := NewIdsManager(refs, ApTracking{Group: 3, Offset: 4})

	felt, err := ids.GetFelt("x", m)
	require.NoError(t, err)
	assert.Equal(t, newFelt(7), felt)
}

func TestIdsApTrackingGroupMismatch(t *testing.T) {
	m := newTestMachine()
	refs := map[string]HintReference{
		"x": NewReference(RegisterAp, 0, true, &ApTracking{Group: 1, Offset: 0}),
	}
	ids := NewIdsManager(refs, ApTracking{Group: 2, Offset: 0})

	_, err := ids.Get("x", m)
	assert.ErrorIs(t, err, ErrIncompatibleApTracking)

	// A reference with no recorded tracking cannot be corrected either.
	refs["y"] = NewReference(RegisterAp, 0, true, nil)
	_, err = ids.Get("y", m)
	assert.ErrorIs(t, err, ErrIncompatibleApTracking)
}

func TestIdsPointerVariable(t *testing.T) {
	m := newTestMachine()
	target := vm.NewRelocatable(0, 9)
	setCell(t, m, 0, vm.NewAddressValue(target))
	ids := NewIdsManager(fpRefs(map[string]int{"ptr": 0}), ApTracking{})

	rel, err := ids.GetRelocatable("ptr", m)
	require.NoError(t, err)
	assert.Equal(t, target, rel)

	_, err = ids.GetFelt("ptr", m)
	assert.ErrorIs(t, err, ErrIdentifierNotFelt)
}

func TestIdsAddressWithoutDereference(t *testing.T) {
	m := newTestMachine()
	refs := map[string]HintReference{"slot": structRef(3)}
	ids := NewIdsManager(refs, ApTracking{})

	value, err := ids.Get("slot", m)
	require.NoError(t, err)
	addr, err := value.Address()
	require.NoError(t, err)
	assert.Equal(t, vm.NewRelocatable(1, 3), addr)
}

func TestIdsImmediate(t *testing.T) {
	m := newTestMachine()
	imm := newFelt(1234)
	refs := map[string]HintReference{
		"c": {Offset1: Immediate(imm), Dereference: false},
	}
	ids := NewIdsManager(refs, ApTracking{})

	felt, err := ids.GetFelt("c", m)
	require.NoError(t, err)
	assert.Equal(t, imm, felt)

	// An immediate has no address.
	_, err = ids.GetAddr("c", m)
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestIdsValueOffset(t *testing.T) {
	m := newTestMachine()
	setCell(t, m, 5, vm.NewUint64Value(77))
	refs := map[string]HintReference{
		"b": {
			Offset1:     RegisterOffset(RegisterFp, 2, false),
			Offset2:     ValueOffset(3),
			Dereference: true,
		},
	}
	ids := NewIdsManager(refs, ApTracking{})

	felt, err := ids.GetFelt("b", m)
	require.NoError(t, err)
	assert.Equal(t, newFelt(77), felt)
}

func TestIdsDoubleDereference(t *testing.T) {
	m := newTestMachine()
	// ids.arr lives behind [fp + 0]; ids.arr[i] with i at [fp + 1].
	arr := m.Memory.AddSegment()
	third, err := arr.AddOffset(2)
	require.NoError(t, err)
	require.NoError(t, m.Memory.Set(third, vm.NewUint64Value(300)))
	setCell(t, m, 0, vm.NewAddressValue(arr))
	setCell(t, m, 1, vm.NewUint64Value(2))

	refs := map[string]HintReference{
		"elem": {
			Offset1:     RegisterOffset(RegisterFp, 0, true),
			Offset2:     RegisterOffset(RegisterFp, 1, false),
			Dereference: true,
		},
	}
	ids := NewIdsManager(refs, ApTracking{})

	felt, err := ids.GetFelt("elem", m)
	require.NoError(t, err)
	assert.Equal(t, newFelt(300), felt)
}

func TestIdsInsertAndStructFields(t *testing.T) {
	m := newTestMachine()
	ids := NewIdsManager(map[string]HintReference{
		"out": NewReference(RegisterFp, 1, true, nil),
		"u":   structRef(4),
	}, ApTracking{})

	v := newFelt(8)
	require.NoError(t, ids.InsertFelt("out", &v, m))
	assert.Equal(t, newFelt(8), cellFelt(t, m, 1))

	require.NoError(t, ids.InsertStructField("u", 0, vm.NewUint64Value(1), m))
	require.NoError(t, ids.InsertStructField("u", 1, vm.NewUint64Value(2), m))
	low, err := ids.GetStructFieldFelt("u", 0, m)
	require.NoError(t, err)
	high, err := ids.GetStructFieldFelt("u", 1, m)
	require.NoError(t, err)
	assert.Equal(t, newFelt(1), low)
	assert.Equal(t, newFelt(2), high)
}
