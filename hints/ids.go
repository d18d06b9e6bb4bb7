package hints

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// IdsManager: resolves symbolic hint variables to memory cells
// ---------------------------------------------------------------------------

// Resolution errors.
var (
	ErrUnknownIdentifier      = errors.New("unknown identifier")
	ErrUnresolvedReference    = errors.New("reference cannot be resolved to an address")
	ErrIncompatibleApTracking = errors.New("incompatible ap tracking groups")
	ErrIdentifierNotFelt      = errors.New("identifier is not a field element")
	ErrIdentifierNotAddress   = errors.New("identifier is not a relocatable")
)

// IdsManager binds a hint's symbolic variable names to their compile-time
// references, together with the ApTracking recorded at the hint site.
// Resolution is pure: the same references against the same registers and
// memory always produce the same address or the same error.
type IdsManager struct {
	References map[string]HintReference
	ApTracking ApTracking
}

// NewIdsManager builds a resolver for one hint site.
func NewIdsManager(references map[string]HintReference, tracking ApTracking) *IdsManager {
	return &IdsManager{References: references, ApTracking: tracking}
}

// reference looks up the compile-time reference for a variable name.
func (ids *IdsManager) reference(name string) (HintReference, error) {
	ref, ok := ids.References[name]
	if !ok {
		return HintReference{}, fmt.Errorf("%w: ids.%s", ErrUnknownIdentifier, name)
	}
	return ref, nil
}

// baseAddress computes the address denoted by a register-relative operand,
// applying the AP-tracking correction when the base register is AP. A group
// mismatch is a structural precondition violation and fails resolution.
func (ids *IdsManager) baseAddress(off OffsetValue, tracking *ApTracking, m *Machine) (vm.Relocatable, error) {
	var base vm.Relocatable
	switch off.register {
	case RegisterFp:
		base = m.Ctx.GetFp()
	case RegisterAp:
		if tracking == nil || tracking.Group != ids.ApTracking.Group {
			return vm.Relocatable{}, fmt.Errorf("%w: reference group %v, current group %d",
				ErrIncompatibleApTracking, trackingGroup(tracking), ids.ApTracking.Group)
		}
		delta := int64(ids.ApTracking.Offset) - int64(tracking.Offset)
		corrected, err := m.Ctx.GetAp().AddOffset(-delta)
		if err != nil {
			return vm.Relocatable{}, err
		}
		base = corrected
	}
	addr, err := base.AddOffset(int64(off.value))
	if err != nil {
		return vm.Relocatable{}, err
	}
	if off.dereference {
		return m.Memory.GetRelocatable(addr)
	}
	return addr, nil
}

func trackingGroup(tracking *ApTracking) any {
	if tracking == nil {
		return "<none>"
	}
	return tracking.Group
}

// resolveAddress computes the final address a reference points at, before
// the top-level dereference decision. Immediate references have no address.
func (ids *IdsManager) resolveAddress(name string, ref HintReference, m *Machine) (vm.Relocatable, error) {
	if ref.Offset1.kind != offsetReference {
		return vm.Relocatable{}, fmt.Errorf("%w: ids.%s has no address", ErrUnresolvedReference, name)
	}
	addr, err := ids.baseAddress(ref.Offset1, ref.ApTracking, m)
	if err != nil {
		return vm.Relocatable{}, fmt.Errorf("ids.%s: %w", name, err)
	}
	switch ref.Offset2.kind {
	case offsetNone:
		return addr, nil
	case offsetValue:
		final, err := addr.AddOffset(int64(ref.Offset2.value))
		if err != nil {
			return vm.Relocatable{}, fmt.Errorf("ids.%s: %w", name, err)
		}
		return final, nil
	case offsetReference:
		// Double dereference: ids.a[ids.i] style. The second operand names a
		// cell holding a felt index that is added to the first address.
		indexAddr, err := ids.baseAddress(ref.Offset2, ref.ApTracking, m)
		if err != nil {
			return vm.Relocatable{}, fmt.Errorf("ids.%s: %w", name, err)
		}
		index, err := m.Memory.GetFelt(indexAddr)
		if err != nil {
			return vm.Relocatable{}, fmt.Errorf("ids.%s: %w", name, err)
		}
		final, err := addr.AddFelt(&index)
		if err != nil {
			return vm.Relocatable{}, fmt.Errorf("ids.%s: %w", name, err)
		}
		return final, nil
	default:
		return vm.Relocatable{}, fmt.Errorf("%w: ids.%s", ErrUnresolvedReference, name)
	}
}

// GetAddr returns the memory address a pointer-shaped variable denotes.
func (ids *IdsManager) GetAddr(name string, m *Machine) (vm.Relocatable, error) {
	ref, err := ids.reference(name)
	if err != nil {
		return vm.Relocatable{}, err
	}
	return ids.resolveAddress(name, ref, m)
}

// Get returns the value of a variable: the immediate for immediate
// references, the cell content for dereferenced references, and the
// computed address itself otherwise.
func (ids *IdsManager) Get(name string, m *Machine) (vm.MaybeRelocatable, error) {
	ref, err := ids.reference(name)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	if ref.Offset1.kind == offsetImmediate {
		return vm.NewFeltValue(&ref.Offset1.immediate), nil
	}
	addr, err := ids.resolveAddress(name, ref, m)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	if !ref.Dereference {
		return vm.NewAddressValue(addr), nil
	}
	value, ok := m.Memory.Get(addr)
	if !ok {
		return vm.MaybeRelocatable{}, fmt.Errorf("%w: ids.%s at %s", ErrUnknownIdentifier, name, addr)
	}
	return value, nil
}

// GetFelt returns an integer-valued variable, failing on addresses.
func (ids *IdsManager) GetFelt(name string, m *Machine) (fp.Element, error) {
	value, err := ids.Get(name, m)
	if err != nil {
		return fp.Element{}, err
	}
	felt, err := value.Felt()
	if err != nil {
		return fp.Element{}, fmt.Errorf("%w: ids.%s", ErrIdentifierNotFelt, name)
	}
	return felt, nil
}

// GetRelocatable returns a pointer-valued variable, failing on felts.
func (ids *IdsManager) GetRelocatable(name string, m *Machine) (vm.Relocatable, error) {
	value, err := ids.Get(name, m)
	if err != nil {
		return vm.Relocatable{}, err
	}
	rel, err := value.Address()
	if err != nil {
		return vm.Relocatable{}, fmt.Errorf("%w: ids.%s", ErrIdentifierNotAddress, name)
	}
	return rel, nil
}

// Insert writes a value into the cell a dereferenced variable denotes.
func (ids *IdsManager) Insert(name string, value vm.MaybeRelocatable, m *Machine) error {
	addr, err := ids.GetAddr(name, m)
	if err != nil {
		return err
	}
	return m.Memory.Set(addr, value)
}

// InsertFelt writes a field element into the cell a variable denotes.
func (ids *IdsManager) InsertFelt(name string, felt *fp.Element, m *Machine) error {
	return ids.Insert(name, vm.NewFeltValue(felt), m)
}

// GetStructFieldFelt reads field number fieldOff of the struct a variable
// denotes, i.e. the felt at address-of(ids.name) + fieldOff.
func (ids *IdsManager) GetStructFieldFelt(name string, fieldOff int64, m *Machine) (fp.Element, error) {
	base, err := ids.GetAddr(name, m)
	if err != nil {
		return fp.Element{}, err
	}
	addr, err := base.AddOffset(fieldOff)
	if err != nil {
		return fp.Element{}, err
	}
	return m.Memory.GetFelt(addr)
}

// InsertStructField writes field number fieldOff of the struct a variable
// denotes.
func (ids *IdsManager) InsertStructField(name string, fieldOff int64, value vm.MaybeRelocatable, m *Machine) error {
	base, err := ids.GetAddr(name, m)
	if err != nil {
		return err
	}
	addr, err := base.AddOffset(fieldOff)
	if err != nil {
		return err
	}
	return m.Memory.Set(addr, value)
}
