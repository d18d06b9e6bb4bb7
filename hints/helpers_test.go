package hints

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/require"

	"github.com/chazu/cairn/vm"
)

// newTestMachine builds a machine with a program segment, an execution
// segment, and AP/FP both at the execution segment base.
func newTestMachine() *Machine {
	memory := vm.NewMemory()
	memory.AddSegment()
	memory.AddSegment()
	return &Machine{
		Memory:     memory,
		Ctx:        vm.NewRunContext(vm.NewRelocatable(1, 0), vm.NewRelocatable(1, 0)),
		RangeCheck: vm.NewRangeCheck(),
	}
}

func newFelt(v uint64) fp.Element {
	var f fp.Element
	f.SetUint64(v)
	return f
}

// fpRefs maps each variable to a dereferenced [fp + offset] reference.
func fpRefs(offsets map[string]int) map[string]HintReference {
	refs := make(map[string]HintReference, len(offsets))
	for name, offset := range offsets {
		refs[name] = NewReference(RegisterFp, offset, true, nil)
	}
	return refs
}

// structRef is a non-dereferenced fp-relative reference: the variable is a
// struct living at fp + offset.
func structRef(offset int) HintReference {
	return NewReference(RegisterFp, offset, false, nil)
}

// setCell writes a value at [fp + offset] on the test machine.
func setCell(t *testing.T, m *Machine, offset int64, value vm.MaybeRelocatable) {
	t.Helper()
	addr, err := m.Ctx.GetFp().AddOffset(offset)
	require.NoError(t, err)
	require.NoError(t, m.Memory.Set(addr, value))
}

// cellFelt reads the felt at [fp + offset].
func cellFelt(t *testing.T, m *Machine, offset int64) fp.Element {
	t.Helper()
	addr, err := m.Ctx.GetFp().AddOffset(offset)
	require.NoError(t, err)
	felt, err := m.Memory.GetFelt(addr)
	require.NoError(t, err)
	return felt
}
