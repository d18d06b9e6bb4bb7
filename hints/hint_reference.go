// Package hints implements the dynamic extension runtime of the Cairn VM:
// out-of-circuit handlers selected by an opaque code string that read and
// write VM memory through symbolic references and carry state between
// invocations on an execution scope stack.
package hints

import (
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// ---------------------------------------------------------------------------
// HintReference: compile-time addressing metadata for one symbolic variable
// ---------------------------------------------------------------------------

// Register names one of the two address base registers.
type Register uint8

const (
	RegisterAp Register = iota
	RegisterFp
)

func (r Register) String() string {
	if r == RegisterAp {
		return "ap"
	}
	return "fp"
}

// ApTracking is compile-time metadata letting the resolver correct an
// AP-relative address for AP movement between hint compilation and hint
// execution. Two trackings are compatible only when their groups match.
type ApTracking struct {
	Group  int
	Offset uint64
}

type offsetKind uint8

const (
	offsetNone offsetKind = iota
	offsetImmediate
	offsetReference
	offsetValue
)

// OffsetValue is one addressing operand of a HintReference: an immediate
// field element, a register plus signed delta (optionally dereferenced), or
// a bare signed offset.
type OffsetValue struct {
	kind        offsetKind
	immediate   fp.Element
	register    Register
	value       int
	dereference bool
}

// Immediate builds an immediate operand.
func Immediate(f fp.Element) OffsetValue {
	return OffsetValue{kind: offsetImmediate, immediate: f}
}

// RegisterOffset builds a register-relative operand.
func RegisterOffset(register Register, delta int, dereference bool) OffsetValue {
	return OffsetValue{kind: offsetReference, register: register, value: delta, dereference: dereference}
}

// ValueOffset builds a bare signed offset operand.
func ValueOffset(delta int) OffsetValue {
	return OffsetValue{kind: offsetValue, value: delta}
}

// HintReference is the immutable compile-time description of how one
// symbolic hint variable maps onto memory. One instance exists per variable
// name per hint.
type HintReference struct {
	Offset1     OffsetValue
	Offset2     OffsetValue
	Dereference bool
	ApTracking  *ApTracking
}

// NewReference builds the common single-operand reference:
// [register + delta] when dereference is set, register + delta otherwise.
func NewReference(register Register, delta int, dereference bool, tracking *ApTracking) HintReference {
	return HintReference{
		Offset1:     RegisterOffset(register, delta, false),
		Dereference: dereference,
		ApTracking:  tracking,
	}
}
