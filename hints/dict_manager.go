package hints

import (
	"errors"
	"fmt"

	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// DictManager: trackers for dictionaries built over memory segments
// ---------------------------------------------------------------------------

// DictAccessSize is the cell width of one access record (key, prev_value,
// new_value). It is a structural constant of the memory layout.
const DictAccessSize = 3

// dictManagerVariable is the scope variable name under which the shared
// manager handle travels between scopes.
const dictManagerVariable = "__dict_manager"

// Dictionary errors.
var (
	ErrNoDictTracker     = errors.New("no dict tracker for this pointer")
	ErrNoValueForKey     = errors.New("no value found for key")
	ErrWrongPrevValue    = errors.New("wrong previous value for key")
	ErrMismatchedDictPtr = errors.New("mismatched dict pointer")
	ErrDictManagerGone   = errors.New("dict manager handle already released")
	ErrDuplicatedDict    = errors.New("segment already tracked by a dictionary")
)

// DictTracker follows one dictionary region: the application-level key/value
// view plus a cursor into memory recording how many access records have been
// appended so far.
type DictTracker struct {
	data         MemoryDict
	defaultValue *vm.MaybeRelocatable // nil for a simple dictionary
	CurrentPtr   vm.Relocatable
}

func newDictTracker(base vm.Relocatable, defaultValue *vm.MaybeRelocatable, initial MemoryDict) *DictTracker {
	tracker := &DictTracker{
		data:         make(MemoryDict, len(initial)),
		defaultValue: defaultValue,
		CurrentPtr:   base,
	}
	for key, value := range initial {
		tracker.data[key] = value
	}
	return tracker
}

// GetValue returns the value stored under key. A default dictionary answers
// its default for a missing key without mutating itself; a simple
// dictionary fails.
func (t *DictTracker) GetValue(key vm.MaybeRelocatable) (vm.MaybeRelocatable, error) {
	if value, ok := t.data[key]; ok {
		return value, nil
	}
	if t.defaultValue != nil {
		return *t.defaultValue, nil
	}
	return vm.MaybeRelocatable{}, fmt.Errorf("%w: %s", ErrNoValueForKey, key)
}

// InsertValue stores a value under key.
func (t *DictTracker) InsertValue(key, value vm.MaybeRelocatable) {
	t.data[key] = value
}

// Update asserts the stored value for key equals prev, then stores next.
func (t *DictTracker) Update(key, prev, next vm.MaybeRelocatable) error {
	current, err := t.GetValue(key)
	if err != nil {
		return err
	}
	if !current.Equal(prev) {
		return fmt.Errorf("%w: key %s holds %s, not %s", ErrWrongPrevValue, key, current, prev)
	}
	t.data[key] = next
	return nil
}

// AdvancePtr moves the cursor past one freshly appended access record.
func (t *DictTracker) AdvancePtr() error {
	ptr, err := t.CurrentPtr.AddOffset(DictAccessSize)
	if err != nil {
		return err
	}
	t.CurrentPtr = ptr
	return nil
}

// Retarget moves the cursor to newPtr, which must stay within the
// dictionary's segment.
func (t *DictTracker) Retarget(newPtr vm.Relocatable) error {
	if newPtr.SegmentIndex != t.CurrentPtr.SegmentIndex {
		return fmt.Errorf("%w: tracker at %s, new pointer %s", ErrMismatchedDictPtr, t.CurrentPtr, newPtr)
	}
	t.CurrentPtr = newPtr
	return nil
}

// CopyData returns a deep copy of the key/value view as a plain map.
func (t *DictTracker) CopyData() MemoryDict {
	copied := make(MemoryDict, len(t.data))
	for key, value := range t.data {
		copied[key] = value
	}
	return copied
}

// Len returns the number of distinct keys the tracker holds.
func (t *DictTracker) Len() int {
	return len(t.data)
}

// DictManager maps a dictionary's base segment index to its tracker. One
// manager serves a whole run and is shared by reference across scopes.
type DictManager struct {
	trackers map[int]*DictTracker
}

// NewDictManager creates an empty manager.
func NewDictManager() *DictManager {
	return &DictManager{trackers: make(map[int]*DictTracker)}
}

// NewDict allocates a fresh segment for a simple dictionary seeded with
// initial and registers its tracker. Returns the dictionary's base address.
func (dm *DictManager) NewDict(memory *vm.Memory, initial MemoryDict) (vm.Relocatable, error) {
	base := memory.AddSegment()
	if _, taken := dm.trackers[base.SegmentIndex]; taken {
		return vm.Relocatable{}, fmt.Errorf("%w: %d", ErrDuplicatedDict, base.SegmentIndex)
	}
	dm.trackers[base.SegmentIndex] = newDictTracker(base, nil, initial)
	return base, nil
}

// NewDefaultDict is NewDict for a default dictionary: missing keys read as
// defaultValue.
func (dm *DictManager) NewDefaultDict(memory *vm.Memory, defaultValue vm.MaybeRelocatable, initial MemoryDict) (vm.Relocatable, error) {
	base := memory.AddSegment()
	if _, taken := dm.trackers[base.SegmentIndex]; taken {
		return vm.Relocatable{}, fmt.Errorf("%w: %d", ErrDuplicatedDict, base.SegmentIndex)
	}
	dm.trackers[base.SegmentIndex] = newDictTracker(base, &defaultValue, initial)
	return base, nil
}

// DefaultValue returns the default and true for a default dictionary.
func (t *DictTracker) DefaultValue() (vm.MaybeRelocatable, bool) {
	if t.defaultValue == nil {
		return vm.MaybeRelocatable{}, false
	}
	return *t.defaultValue, true
}

// Trackers returns the live trackers keyed by base segment index. The map
// is the manager's own; callers must treat it as read-only.
func (dm *DictManager) Trackers() map[int]*DictTracker {
	return dm.trackers
}

// GetTracker resolves a dictionary pointer to its tracker by base segment
// index.
func (dm *DictManager) GetTracker(dictPtr vm.Relocatable) (*DictTracker, error) {
	tracker, ok := dm.trackers[dictPtr.SegmentIndex]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDictTracker, dictPtr)
	}
	return tracker, nil
}

// ---------------------------------------------------------------------------
// DictManagerHandle: reference-counted shared ownership of the manager
// ---------------------------------------------------------------------------

// DictManagerHandle is the shared-ownership wrapper scopes hold: the one
// manager is mutably aliased from an outer scope and any squash-preparation
// inner scopes at the same time. Each holding scope releases its reference
// when done; the manager is dropped when the last reference goes.
type DictManagerHandle struct {
	manager *DictManager
	refs    *int
}

// NewDictManagerHandle wraps a fresh manager with one reference.
func NewDictManagerHandle() *DictManagerHandle {
	refs := 1
	return &DictManagerHandle{manager: NewDictManager(), refs: &refs}
}

// Acquire takes an additional reference for a new holder.
func (h *DictManagerHandle) Acquire() *DictManagerHandle {
	*h.refs++
	return &DictManagerHandle{manager: h.manager, refs: h.refs}
}

// Release drops this holder's reference. The manager is discarded when the
// count reaches zero; further use of this handle fails.
func (h *DictManagerHandle) Release() {
	if h.manager == nil {
		return
	}
	*h.refs--
	h.manager = nil
}

// Manager returns the shared manager, failing after release.
func (h *DictManagerHandle) Manager() (*DictManager, error) {
	if h.manager == nil {
		return nil, ErrDictManagerGone
	}
	return h.manager, nil
}

// dictManager returns the run's shared manager handle, creating it in the
// current scope on first use.
func dictManager(scopes *ExecutionScopes) (*DictManagerHandle, error) {
	if _, err := scopes.Get(dictManagerVariable); err != nil {
		handle := NewDictManagerHandle()
		scopes.AssignOrUpdate(dictManagerVariable, handle)
		return handle, nil
	}
	return scopes.GetDictManagerHandle(dictManagerVariable)
}
