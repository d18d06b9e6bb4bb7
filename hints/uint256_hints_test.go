package hints

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cvm "github.com/chazu/cairn/vm"
)

func uint256Constants() Constants {
	var shift fp.Element
	shift.SetString("340282366920938463463374607431768211456") // 2^128
	return Constants{"starkware.cairo.common.uint256.SHIFT": shift}
}

// setUint256 writes (low, high) limbs at [fp + offset] and [fp + offset + 1].
func setUint256(t *testing.T, m *Machine, offset int64, low, high fp.Element) {
	t.Helper()
	setCell(t, m, offset, cvm.NewFeltValue(&low))
	setCell(t, m, offset+1, cvm.NewFeltValue(&high))
}

func maxLimb() fp.Element {
	var limb fp.Element
	limb.SetString("340282366920938463463374607431768211455") // 2^128 - 1
	return limb
}

func TestUint256AddNoCarry(t *testing.T) {
	m := newTestMachine()
	refs := map[string]HintReference{
		"a":          structRef(0),
		"b":          structRef(2),
		"carry_low":  NewReference(RegisterFp, 4, true, nil),
		"carry_high": NewReference(RegisterFp, 5, true, nil),
	}
	setUint256(t, m, 0, newFelt(1), newFelt(2))
	setUint256(t, m, 2, newFelt(3), newFelt(4))

	require.NoError(t, runHint(t, NewProcessor(), Uint256AddCode, refs, m, uint256Constants(), NewExecutionScopes()))
	assert.Equal(t, newFelt(0), cellFelt(t, m, 4))
	assert.Equal(t, newFelt(0), cellFelt(t, m, 5))
}

func TestUint256AddCarries(t *testing.T) {
	m := newTestMachine()
	refs := map[string]HintReference{
		"a":          structRef(0),
		"b":          structRef(2),
		"carry_low":  NewReference(RegisterFp, 4, true, nil),
		"carry_high": NewReference(RegisterFp, 5, true, nil),
	}
	// Both limb sums overflow 2^128.
	setUint256(t, m, 0, maxLimb(), maxLimb())
	setUint256(t, m, 2, newFelt(1), newFelt(0))

	require.NoError(t, runHint(t, NewProcessor(), Uint256AddCode, refs, m, uint256Constants(), NewExecutionScopes()))
	assert.Equal(t, newFelt(1), cellFelt(t, m, 4))
	assert.Equal(t, newFelt(1), cellFelt(t, m, 5))
}

func TestSplit64(t *testing.T) {
	m := newTestMachine()
	refs := fpRefs(map[string]int{"a": 0, "low": 1, "high": 2})

	// a = 3 * 2^64 + 8
	var a fp.Element
	a.SetString("55340232221128654856") // 3 << 64 | 8
	setCell(t, m, 0, cvm.NewFeltValue(&a))

	require.NoError(t, runHint(t, NewProcessor(), Split64Code, refs, m, nil, NewExecutionScopes()))
	assert.Equal(t, newFelt(8), cellFelt(t, m, 1))
	assert.Equal(t, newFelt(3), cellFelt(t, m, 2))
}

func TestUint256Sqrt(t *testing.T) {
	m := newTestMachine()
	refs := map[string]HintReference{
		"n":    structRef(0),
		"root": structRef(2),
	}
	// n = 2^128 -> root = 2^64
	setUint256(t, m, 0, newFelt(0), newFelt(1))

	require.NoError(t, runHint(t, NewProcessor(), Uint256SqrtCode, refs, m, nil, NewExecutionScopes()))
	var expected fp.Element
	expected.SetString("18446744073709551616") // 2^64
	assert.Equal(t, expected, cellFelt(t, m, 2))
	assert.Equal(t, newFelt(0), cellFelt(t, m, 3))
}

func TestUint256SignedNN(t *testing.T) {
	p := NewProcessor()
	refs := map[string]HintReference{"a": structRef(0)}

	m := newTestMachine()
	var err error
	m.Ctx.Ap, err = m.Ctx.GetFp().AddOffset(5)
	require.NoError(t, err)
	setUint256(t, m, 0, newFelt(7), newFelt(1))
	require.NoError(t, runHint(t, p, Uint256SignedNNCode, refs, m, nil, NewExecutionScopes()))
	result, err := m.Memory.GetFelt(m.Ctx.GetAp())
	require.NoError(t, err)
	assert.Equal(t, newFelt(1), result)

	// high >= 2^127 means the sign bit is set.
	m2 := newTestMachine()
	m2.Ctx.Ap, err = m2.Ctx.GetFp().AddOffset(5)
	require.NoError(t, err)
	var signHigh fp.Element
	signHigh.SetString("170141183460469231731687303715884105728") // 2^127
	setUint256(t, m2, 0, newFelt(0), signHigh)
	require.NoError(t, runHint(t, p, Uint256SignedNNCode, refs, m2, nil, NewExecutionScopes()))
	result, err = m2.Memory.GetFelt(m2.Ctx.GetAp())
	require.NoError(t, err)
	assert.Equal(t, newFelt(0), result)
}

func TestUint256UnsignedDivRem(t *testing.T) {
	m := newTestMachine()
	refs := map[string]HintReference{
		"a":         structRef(0),
		"div":       structRef(2),
		"quotient":  structRef(4),
		"remainder": structRef(6),
	}
	// a = 5 * 2^128 + 7, div = 2 -> q = 2.5 * 2^128 + 3, r = 1
	setUint256(t, m, 0, newFelt(7), newFelt(5))
	setUint256(t, m, 2, newFelt(2), newFelt(0))

	require.NoError(t, runHint(t, NewProcessor(), Uint256UnsignedDivRemCode, refs, m, nil, NewExecutionScopes()))

	var qLow fp.Element
	qLow.SetString("170141183460469231731687303715884105731") // 2^127 + 3
	assert.Equal(t, qLow, cellFelt(t, m, 4))
	assert.Equal(t, newFelt(2), cellFelt(t, m, 5))
	assert.Equal(t, newFelt(1), cellFelt(t, m, 6))
	assert.Equal(t, newFelt(0), cellFelt(t, m, 7))
}

func TestUint256UnsignedDivRemZero(t *testing.T) {
	m := newTestMachine()
	refs := map[string]HintReference{
		"a":         structRef(0),
		"div":       structRef(2),
		"quotient":  structRef(4),
		"remainder": structRef(6),
	}
	setUint256(t, m, 0, newFelt(7), newFelt(0))
	setUint256(t, m, 2, newFelt(0), newFelt(0))

	err := runHint(t, NewProcessor(), Uint256UnsignedDivRemCode, refs, m, nil, NewExecutionScopes())
	assert.ErrorIs(t, err, ErrDivisionByZero)
}
