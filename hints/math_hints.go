package hints

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// Math hints
// ---------------------------------------------------------------------------

// Numeric errors.
var (
	ErrValueOutsideRange = errors.New("value outside valid range")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrAssertNotZero     = errors.New("assert_not_zero failed: value is zero")
	ErrAssertLeFelt      = errors.New("assert_le_felt failed: a is greater than b")
	ErrExcludedNotTwo    = errors.New("assert_le_felt: excluded arc is not the last one")
	ErrUnboundedBuiltin  = errors.New("range-check builtin has no bound")
)

func (p *Processor) registerMathHints() {
	p.Register(AssertNotZeroCode, assertNotZeroHint)
	p.Register(IsNNCode, isNNHint)
	p.Register(IsPositiveCode, isPositiveHint)
	p.Register(AssertLeFeltCode, assertLeFeltHint)
	p.Register(AssertLeFeltExcluded0Code, assertLeFeltExcludedHint(0))
	p.Register(AssertLeFeltExcluded1Code, assertLeFeltExcludedHint(1))
	p.Register(AssertLeFeltExcluded2Code, assertLeFeltExcludedTwoHint)
	p.Register(SplitFeltCode, splitFeltHint)
	p.Register(SqrtCode, sqrtHint)
	p.Register(UnsignedDivRemCode, unsignedDivRemHint)
	p.Register(SignedDivRemCode, signedDivRemHint)
}

// rcBound returns the range-check bound, which these hints require.
func rcBound(m *Machine) (*fp.Element, error) {
	bound := m.RangeCheck.Bound()
	if bound == nil {
		return nil, ErrUnboundedBuiltin
	}
	return bound, nil
}

// feltToBig lifts a felt into its canonical [0, PRIME) integer.
func feltToBig(f *fp.Element) *big.Int {
	return f.BigInt(new(big.Int))
}

// feltToSigned lifts a felt into the balanced range (-PRIME/2, PRIME/2].
func feltToSigned(f *fp.Element) *big.Int {
	value := feltToBig(f)
	prime := fp.Modulus()
	half := new(big.Int).Rsh(prime, 1)
	if value.Cmp(half) > 0 {
		value.Sub(value, prime)
	}
	return value
}

func assertNotZeroHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	value, err := data.Ids.GetFelt("value", m)
	if err != nil {
		return err
	}
	if value.IsZero() {
		return ErrAssertNotZero
	}
	return nil
}

func isNNHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	a, err := data.Ids.GetFelt("a", m)
	if err != nil {
		return err
	}
	bound, err := rcBound(m)
	if err != nil {
		return err
	}
	var result fp.Element
	if a.Cmp(bound) >= 0 {
		result.SetOne()
	}
	return m.Memory.Set(m.Ctx.GetAp(), vm.NewFeltValue(&result))
}

func isPositiveHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	value, err := data.Ids.GetFelt("value", m)
	if err != nil {
		return err
	}
	bound, err := rcBound(m)
	if err != nil {
		return err
	}
	signed := feltToSigned(&value)
	if new(big.Int).Abs(signed).Cmp(feltToBig(bound)) >= 0 {
		return fmt.Errorf("%w: %s as signed value", ErrValueOutsideRange, value.String())
	}
	var isPositive fp.Element
	if signed.Sign() > 0 {
		isPositive.SetOne()
	}
	return data.Ids.InsertFelt("is_positive", &isPositive, m)
}

// assertLeFeltHint proves a <= b by splitting the field circle into three
// arcs and range-checking the two shortest. The excluded arc's index is left
// in scope for the follow-up exclusion hints.
func assertLeFeltHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	a, err := data.Ids.GetFelt("a", m)
	if err != nil {
		return err
	}
	b, err := data.Ids.GetFelt("b", m)
	if err != nil {
		return err
	}
	if a.Cmp(&b) > 0 {
		return fmt.Errorf("%w: a = %s, b = %s", ErrAssertLeFelt, a.String(), b.String())
	}
	primeOver3High, err := constants.Get("PRIME_OVER_3_HIGH")
	if err != nil {
		return err
	}
	primeOver2High, err := constants.Get("PRIME_OVER_2_HIGH")
	if err != nil {
		return err
	}
	rcPtr, err := data.Ids.GetRelocatable("range_check_ptr", m)
	if err != nil {
		return err
	}

	prime := fp.Modulus()
	bigA, bigB := feltToBig(&a), feltToBig(&b)
	type arc struct {
		length *big.Int
		index  int
	}
	arcs := []arc{
		{bigA, 0},
		{new(big.Int).Sub(bigB, bigA), 1},
		{new(big.Int).Sub(new(big.Int).Sub(prime, big.NewInt(1)), bigB), 2},
	}
	sort.Slice(arcs, func(i, j int) bool { return arcs[i].length.Cmp(arcs[j].length) < 0 })

	if err := writeArcQuotRem(m, rcPtr, 0, arcs[0].length, feltToBig(&primeOver3High)); err != nil {
		return err
	}
	if err := writeArcQuotRem(m, rcPtr, 2, arcs[1].length, feltToBig(&primeOver2High)); err != nil {
		return err
	}

	var excluded fp.Element
	excluded.SetUint64(uint64(arcs[2].index))
	scopes.AssignOrUpdate("excluded", FeltValue{Felt: excluded})
	return nil
}

// writeArcQuotRem writes divmod(length, divisor) as (remainder, quotient)
// into two consecutive range-check cells starting at rcPtr + offset.
func writeArcQuotRem(m *Machine, rcPtr vm.Relocatable, offset int64, length, divisor *big.Int) error {
	if divisor.Sign() == 0 {
		return fmt.Errorf("%w: arc divisor", ErrDivisionByZero)
	}
	quot, rem := new(big.Int).QuoRem(length, divisor, new(big.Int))
	var quotFelt, remFelt fp.Element
	quotFelt.SetBigInt(quot)
	remFelt.SetBigInt(rem)
	remAddr, err := rcPtr.AddOffset(offset)
	if err != nil {
		return err
	}
	quotAddr, err := rcPtr.AddOffset(offset + 1)
	if err != nil {
		return err
	}
	if err := m.Memory.Set(remAddr, vm.NewFeltValue(&remFelt)); err != nil {
		return err
	}
	return m.Memory.Set(quotAddr, vm.NewFeltValue(&quotFelt))
}

// assertLeFeltExcludedHint answers whether the excluded arc differs from the
// probed index.
func assertLeFeltExcludedHint(index uint64) Handler {
	return func(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
		excluded, err := scopes.GetFelt("excluded")
		if err != nil {
			return err
		}
		var probe, result fp.Element
		probe.SetUint64(index)
		if !excluded.Equal(&probe) {
			result.SetOne()
		}
		return m.Memory.Set(m.Ctx.GetAp(), vm.NewFeltValue(&result))
	}
}

func assertLeFeltExcludedTwoHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	excluded, err := scopes.GetFelt("excluded")
	if err != nil {
		return err
	}
	var two fp.Element
	two.SetUint64(2)
	if !excluded.Equal(&two) {
		return ErrExcludedNotTwo
	}
	return nil
}

func splitFeltHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	value, err := data.Ids.GetFelt("value", m)
	if err != nil {
		return err
	}
	big128 := new(big.Int).Lsh(big.NewInt(1), 128)
	bigValue := feltToBig(&value)
	var low, high fp.Element
	low.SetBigInt(new(big.Int).Mod(bigValue, big128))
	high.SetBigInt(new(big.Int).Rsh(bigValue, 128))
	if err := data.Ids.InsertFelt("low", &low, m); err != nil {
		return err
	}
	return data.Ids.InsertFelt("high", &high, m)
}

func sqrtHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	value, err := data.Ids.GetFelt("value", m)
	if err != nil {
		return err
	}
	bigValue := feltToBig(&value)
	limit := new(big.Int).Lsh(big.NewInt(1), 250)
	if bigValue.Cmp(limit) >= 0 {
		return fmt.Errorf("%w: value=%s is outside of the range [0, 2**250)", ErrValueOutsideRange, bigValue)
	}
	var root fp.Element
	root.SetBigInt(new(big.Int).Sqrt(bigValue))
	return data.Ids.InsertFelt("root", &root, m)
}

func unsignedDivRemHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	div, err := data.Ids.GetFelt("div", m)
	if err != nil {
		return err
	}
	value, err := data.Ids.GetFelt("value", m)
	if err != nil {
		return err
	}
	bound, err := rcBound(m)
	if err != nil {
		return err
	}
	bigDiv := feltToBig(&div)
	limit := new(big.Int).Quo(fp.Modulus(), feltToBig(bound))
	if bigDiv.Sign() == 0 || bigDiv.Cmp(limit) > 0 {
		return fmt.Errorf("%w: div=%s", ErrValueOutsideRange, bigDiv)
	}
	quot, rem := new(big.Int).QuoRem(feltToBig(&value), bigDiv, new(big.Int))
	var q, r fp.Element
	q.SetBigInt(quot)
	r.SetBigInt(rem)
	if err := data.Ids.InsertFelt("q", &q, m); err != nil {
		return err
	}
	return data.Ids.InsertFelt("r", &r, m)
}

// signedDivRemHint divides ids.value taken as a signed integer, emitting the
// remainder and the bound-biased quotient the circuit range-checks.
func signedDivRemHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	div, err := data.Ids.GetFelt("div", m)
	if err != nil {
		return err
	}
	boundFelt, err := data.Ids.GetFelt("bound", m)
	if err != nil {
		return err
	}
	value, err := data.Ids.GetFelt("value", m)
	if err != nil {
		return err
	}
	rc, err := rcBound(m)
	if err != nil {
		return err
	}
	bigDiv := feltToBig(&div)
	divLimit := new(big.Int).Quo(fp.Modulus(), feltToBig(rc))
	if bigDiv.Sign() == 0 || bigDiv.Cmp(divLimit) > 0 {
		return fmt.Errorf("%w: div=%s", ErrValueOutsideRange, bigDiv)
	}
	bound := feltToBig(&boundFelt)
	if bound.Cmp(new(big.Int).Rsh(feltToBig(rc), 1)) > 0 {
		return fmt.Errorf("%w: bound=%s", ErrValueOutsideRange, bound)
	}

	// Floor division matches Euclidean division for a positive divisor.
	signed := feltToSigned(&value)
	quot, rem := new(big.Int).DivMod(signed, bigDiv, new(big.Int))
	if quot.Cmp(new(big.Int).Neg(bound)) < 0 || quot.Cmp(bound) >= 0 {
		return fmt.Errorf("%w: %s / %s = %s is out of [-bound, bound)",
			ErrValueOutsideRange, signed, bigDiv, quot)
	}

	var r, biasedQ fp.Element
	r.SetBigInt(rem)
	biasedQ.SetBigInt(new(big.Int).Add(quot, bound))
	if err := data.Ids.InsertFelt("r", &r, m); err != nil {
		return err
	}
	return data.Ids.InsertFelt("biased_q", &biasedQ, m)
}
