package hints

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/holiman/uint256"

	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// Uint256 hints: two 128-bit felt limbs per value
// ---------------------------------------------------------------------------

// Uint256 struct field layout.
const (
	uint256LowOffset  = 0
	uint256HighOffset = 1
)

func (p *Processor) registerUint256Hints() {
	p.Register(Uint256AddCode, uint256AddHint)
	p.Register(Split64Code, split64Hint)
	p.Register(Uint256SqrtCode, uint256SqrtHint)
	p.Register(Uint256SignedNNCode, uint256SignedNNHint)
	p.Register(Uint256UnsignedDivRemCode, uint256UnsignedDivRemHint)
}

// uint256Limbs reads the low and high 128-bit limbs of ids.name.
func uint256Limbs(data *HintData, name string, m *Machine) (low, high fp.Element, err error) {
	low, err = data.Ids.GetStructFieldFelt(name, uint256LowOffset, m)
	if err != nil {
		return
	}
	high, err = data.Ids.GetStructFieldFelt(name, uint256HighOffset, m)
	return
}

// uint256FromLimbs combines two 128-bit limbs into one machine word.
func uint256FromLimbs(low, high *fp.Element) (*uint256.Int, error) {
	shift := new(big.Int).Lsh(big.NewInt(1), 128)
	bigLow, bigHigh := feltToBig(low), feltToBig(high)
	if bigLow.Cmp(shift) >= 0 || bigHigh.Cmp(shift) >= 0 {
		return nil, fmt.Errorf("%w: uint256 limb exceeds 128 bits", ErrValueOutsideRange)
	}
	combined := new(big.Int).Add(new(big.Int).Lsh(bigHigh, 128), bigLow)
	value, overflow := uint256.FromBig(combined)
	if overflow {
		return nil, fmt.Errorf("%w: uint256 value", ErrValueOutsideRange)
	}
	return value, nil
}

func feltFromUint256(u *uint256.Int) fp.Element {
	var f fp.Element
	f.SetBigInt(u.ToBig())
	return f
}

// writeUint256 stores value into ids.name as (low, high) limbs.
func writeUint256(data *HintData, name string, value *uint256.Int, m *Machine) error {
	mask := new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)
	low := feltFromUint256(new(uint256.Int).And(value, mask))
	high := feltFromUint256(new(uint256.Int).Rsh(value, 128))
	if err := data.Ids.InsertStructField(name, uint256LowOffset, vm.NewFeltValue(&low), m); err != nil {
		return err
	}
	return data.Ids.InsertStructField(name, uint256HighOffset, vm.NewFeltValue(&high), m)
}

// uint256AddHint computes the two per-limb carries of a + b.
func uint256AddHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	aLow, aHigh, err := uint256Limbs(data, "a", m)
	if err != nil {
		return err
	}
	bLow, bHigh, err := uint256Limbs(data, "b", m)
	if err != nil {
		return err
	}
	shift, err := constants.Get("SHIFT")
	if err != nil {
		return err
	}

	var sumLow, carryLow fp.Element
	sumLow.Add(&aLow, &bLow)
	if sumLow.Cmp(&shift) >= 0 {
		carryLow.SetOne()
	}
	var sumHigh, carryHigh fp.Element
	sumHigh.Add(&aHigh, &bHigh)
	sumHigh.Add(&sumHigh, &carryLow)
	if sumHigh.Cmp(&shift) >= 0 {
		carryHigh.SetOne()
	}
	if err := data.Ids.InsertFelt("carry_low", &carryLow, m); err != nil {
		return err
	}
	return data.Ids.InsertFelt("carry_high", &carryHigh, m)
}

// split64Hint splits a felt into its low 64 bits and the rest.
func split64Hint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	a, err := data.Ids.GetFelt("a", m)
	if err != nil {
		return err
	}
	bigA := feltToBig(&a)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	var low, high fp.Element
	low.SetBigInt(new(big.Int).And(bigA, mask))
	high.SetBigInt(new(big.Int).Rsh(bigA, 64))
	if err := data.Ids.InsertFelt("low", &low, m); err != nil {
		return err
	}
	return data.Ids.InsertFelt("high", &high, m)
}

func uint256SqrtHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	nLow, nHigh, err := uint256Limbs(data, "n", m)
	if err != nil {
		return err
	}
	n, err := uint256FromLimbs(&nLow, &nHigh)
	if err != nil {
		return err
	}
	root := new(uint256.Int).Sqrt(n)
	limit := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	if root.Cmp(limit) >= 0 {
		return fmt.Errorf("%w: sqrt root", ErrValueOutsideRange)
	}
	rootFelt := feltFromUint256(root)
	var zero fp.Element
	if err := data.Ids.InsertStructField("root", uint256LowOffset, vm.NewFeltValue(&rootFelt), m); err != nil {
		return err
	}
	return data.Ids.InsertStructField("root", uint256HighOffset, vm.NewFeltValue(&zero), m)
}

// uint256SignedNNHint leaves 1 at [ap] iff a is non-negative as a signed
// 256-bit value.
func uint256SignedNNHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	_, aHigh, err := uint256Limbs(data, "a", m)
	if err != nil {
		return err
	}
	signBound := new(big.Int).Lsh(big.NewInt(1), 127)
	var result fp.Element
	if feltToBig(&aHigh).Cmp(signBound) < 0 {
		result.SetOne()
	}
	return m.Memory.Set(m.Ctx.GetAp(), vm.NewFeltValue(&result))
}

func uint256UnsignedDivRemHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	aLow, aHigh, err := uint256Limbs(data, "a", m)
	if err != nil {
		return err
	}
	divLow, divHigh, err := uint256Limbs(data, "div", m)
	if err != nil {
		return err
	}
	a, err := uint256FromLimbs(&aLow, &aHigh)
	if err != nil {
		return err
	}
	div, err := uint256FromLimbs(&divLow, &divHigh)
	if err != nil {
		return err
	}
	if div.IsZero() {
		return fmt.Errorf("%w: uint256 div", ErrDivisionByZero)
	}
	quotient := new(uint256.Int).Div(a, div)
	remainder := new(uint256.Int).Mod(a, div)
	if err := writeUint256(data, "quotient", quotient, m); err != nil {
		return err
	}
	return writeUint256(data, "remainder", remainder, m)
}
