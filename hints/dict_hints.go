package hints

import (
	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// Dictionary hints
// ---------------------------------------------------------------------------

func (p *Processor) registerDictHints() {
	p.Register(DictNewCode, dictNewHint)
	p.Register(DefaultDictNewCode, defaultDictNewHint)
	p.Register(DictReadCode, dictReadHint)
	p.Register(DictWriteCode, dictWriteHint)
	p.Register(DictUpdateCode, dictUpdateHint)
	p.Register(DictSquashCopyDictCode, dictSquashCopyDictHint)
	p.Register(DictSquashUpdatePtrCode, dictSquashUpdatePtrHint)
}

// dictNewHint creates a simple dictionary seeded from the scope variable
// initial_dict and leaves its base at [ap].
func dictNewHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	initial, err := scopes.GetMemoryDict("initial_dict")
	if err != nil {
		return err
	}
	handle, err := dictManager(scopes)
	if err != nil {
		return err
	}
	manager, err := handle.Manager()
	if err != nil {
		return err
	}
	base, err := manager.NewDict(m.Memory, initial)
	if err != nil {
		return err
	}
	scopes.DeleteVariable("initial_dict")
	return m.Memory.Set(m.Ctx.GetAp(), vm.NewAddressValue(base))
}

// defaultDictNewHint creates a default dictionary whose missing keys read as
// ids.default_value and leaves its base at [ap].
func defaultDictNewHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	defaultValue, err := data.Ids.Get("default_value", m)
	if err != nil {
		return err
	}
	handle, err := dictManager(scopes)
	if err != nil {
		return err
	}
	manager, err := handle.Manager()
	if err != nil {
		return err
	}
	base, err := manager.NewDefaultDict(m.Memory, defaultValue, nil)
	if err != nil {
		return err
	}
	return m.Memory.Set(m.Ctx.GetAp(), vm.NewAddressValue(base))
}

// trackerForPtr resolves ids.dict_ptr through the run's shared manager.
func trackerForPtr(data *HintData, m *Machine, scopes *ExecutionScopes) (*DictTracker, error) {
	dictPtr, err := data.Ids.GetRelocatable("dict_ptr", m)
	if err != nil {
		return nil, err
	}
	handle, err := scopes.GetDictManagerHandle(dictManagerVariable)
	if err != nil {
		return nil, err
	}
	manager, err := handle.Manager()
	if err != nil {
		return nil, err
	}
	return manager.GetTracker(dictPtr)
}

func dictReadHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	tracker, err := trackerForPtr(data, m, scopes)
	if err != nil {
		return err
	}
	key, err := data.Ids.Get("key", m)
	if err != nil {
		return err
	}
	value, err := tracker.GetValue(key)
	if err != nil {
		return err
	}
	if err := tracker.AdvancePtr(); err != nil {
		return err
	}
	return data.Ids.Insert("value", value, m)
}

func dictWriteHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	tracker, err := trackerForPtr(data, m, scopes)
	if err != nil {
		return err
	}
	key, err := data.Ids.Get("key", m)
	if err != nil {
		return err
	}
	newValue, err := data.Ids.Get("new_value", m)
	if err != nil {
		return err
	}
	prevValue, err := tracker.GetValue(key)
	if err != nil {
		return err
	}
	if err := tracker.AdvancePtr(); err != nil {
		return err
	}
	// The access record under construction lives at ids.dict_ptr; its
	// prev_value field is the middle cell.
	dictPtr, err := data.Ids.GetRelocatable("dict_ptr", m)
	if err != nil {
		return err
	}
	prevAddr, err := dictPtr.AddOffset(1)
	if err != nil {
		return err
	}
	if err := m.Memory.Set(prevAddr, prevValue); err != nil {
		return err
	}
	tracker.InsertValue(key, newValue)
	return nil
}

func dictUpdateHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	tracker, err := trackerForPtr(data, m, scopes)
	if err != nil {
		return err
	}
	key, err := data.Ids.Get("key", m)
	if err != nil {
		return err
	}
	prevValue, err := data.Ids.Get("prev_value", m)
	if err != nil {
		return err
	}
	newValue, err := data.Ids.Get("new_value", m)
	if err != nil {
		return err
	}
	if err := tracker.Update(key, prevValue, newValue); err != nil {
		return err
	}
	return tracker.AdvancePtr()
}

// dictSquashCopyDictHint opens the squash-preparation scope: the shared
// manager handle plus a copy of the dictionary being squashed, so dict_new
// can seed the replacement dictionary from it.
func dictSquashCopyDictHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	handle, err := scopes.GetDictManagerHandle(dictManagerVariable)
	if err != nil {
		return err
	}
	manager, err := handle.Manager()
	if err != nil {
		return err
	}
	accessesEnd, err := data.Ids.GetRelocatable("dict_accesses_end", m)
	if err != nil {
		return err
	}
	tracker, err := manager.GetTracker(accessesEnd)
	if err != nil {
		return err
	}
	scopes.EnterScope(map[string]ScopeValue{
		dictManagerVariable: handle.Acquire(),
		"initial_dict":      tracker.CopyData(),
	})
	return nil
}

// dictSquashUpdatePtrHint retargets the squashed dictionary's tracker to the
// end of the squashed access log.
func dictSquashUpdatePtrHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	handle, err := scopes.GetDictManagerHandle(dictManagerVariable)
	if err != nil {
		return err
	}
	manager, err := handle.Manager()
	if err != nil {
		return err
	}
	squashedStart, err := data.Ids.GetRelocatable("squashed_dict_start", m)
	if err != nil {
		return err
	}
	squashedEnd, err := data.Ids.GetRelocatable("squashed_dict_end", m)
	if err != nil {
		return err
	}
	tracker, err := manager.GetTracker(squashedStart)
	if err != nil {
		return err
	}
	return tracker.Retarget(squashedEnd)
}
