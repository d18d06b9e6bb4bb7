package hints

import (
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// Memory and scope hints
// ---------------------------------------------------------------------------

func (p *Processor) registerMemoryHints() {
	p.Register(AddSegmentCode, addSegmentHint)
	p.Register(TemporaryArrayCode, temporaryArrayHint)
	p.Register(VMEnterScopeCode, vmEnterScopeHint)
	p.Register(VMExitScopeCode, vmExitScopeHint)
	p.Register(MemcpyEnterScopeCode, memcpyEnterScopeHint)
	p.Register(MemcpyContinueCopyingCode, memcpyContinueCopyingHint)
}

// addSegmentHint allocates a fresh segment and leaves its base at [ap].
func addSegmentHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	base := m.Memory.AddSegment()
	return m.Memory.Set(m.Ctx.GetAp(), vm.NewAddressValue(base))
}

// temporaryArrayHint allocates a temporary (negative-index) segment.
func temporaryArrayHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	base := m.Memory.AddTempSegment()
	return data.Ids.Insert("temporary_array", vm.NewAddressValue(base), m)
}

func vmEnterScopeHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	scopes.EnterScope(nil)
	return nil
}

func vmExitScopeHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	return scopes.ExitScope()
}

// memcpyEnterScopeHint seeds a private scope with the remaining copy count.
func memcpyEnterScopeHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	length, err := data.Ids.GetFelt("len", m)
	if err != nil {
		return err
	}
	scopes.EnterScope(map[string]ScopeValue{"n": FeltValue{Felt: length}})
	return nil
}

// memcpyContinueCopyingHint decrements the scope counter and tells the loop
// whether another iteration remains.
func memcpyContinueCopyingHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	n, err := scopes.GetFelt("n")
	if err != nil {
		return err
	}
	var one fp.Element
	one.SetOne()
	n.Sub(&n, &one)
	scopes.AssignOrUpdate("n", FeltValue{Felt: n})

	var continueCopying fp.Element
	if !n.IsZero() {
		continueCopying.SetOne()
	}
	return data.Ids.InsertFelt("continue_copying", &continueCopying, m)
}
