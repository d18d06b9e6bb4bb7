package vm

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// ---------------------------------------------------------------------------
// Range-check builtin: the single numeric bound hints consume
// ---------------------------------------------------------------------------

// RangeCheck is the hint runtime's view of the range-check builtin runner:
// only its upper bound matters here. A nil bound means unbounded.
type RangeCheck struct {
	bound *fp.Element
}

// DefaultRangeCheckBound is 2**128, the bound of the standard range-check
// builtin.
func DefaultRangeCheckBound() *fp.Element {
	bound := new(big.Int).Lsh(big.NewInt(1), 128)
	var f fp.Element
	f.SetBigInt(bound)
	return &f
}

// NewRangeCheck creates a range-check view with the standard 2**128 bound.
func NewRangeCheck() *RangeCheck {
	return &RangeCheck{bound: DefaultRangeCheckBound()}
}

// NewUnboundedRangeCheck creates a range-check view with no bound.
func NewUnboundedRangeCheck() *RangeCheck {
	return &RangeCheck{}
}

// Bound returns the builtin's upper bound, or nil if unbounded.
func (rc *RangeCheck) Bound() *fp.Element {
	return rc.bound
}
