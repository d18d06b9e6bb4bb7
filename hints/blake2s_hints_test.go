package hints

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cvm "github.com/chazu/cairn/vm"
)

func TestBlake2sCompressEmptyInput(t *testing.T) {
	// blake2s-256 of the empty string, with the parameter-block word folded
	// into h[0] and the final-block flag set.
	h := blake2sIV
	h[0] ^= 0x01010020
	var message [16]uint32
	out := blake2sCompress(h, message, 0, 0, 0xffffffff, 0)

	expected := [8]uint32{
		0x307a2169, 0x94809079, 0xd02111e1, 0x7c4a3542,
		0x48b6551f, 0x1ea5a12c, 0xfd0d251b, 0xf9eed01e,
	}
	assert.Equal(t, expected, out)
}

func blake2sConstants(nPacked, chunkSize uint64) Constants {
	constants := make(Constants)
	var n, c fp.Element
	n.SetUint64(nPacked)
	c.SetUint64(chunkSize)
	constants["starkware.cairo.common.cairo_blake2s.blake2s.N_PACKED_INSTANCES"] = n
	constants["starkware.cairo.common.cairo_blake2s.packed_blake2s.BLAKE2S_INPUT_CHUNK_SIZE_FELTS"] = c
	return constants
}

func TestBlake2sFinalizePadding(t *testing.T) {
	m := newTestMachine()
	padBase := m.Memory.AddSegment()
	setCell(t, m, 0, cvm.NewAddressValue(padBase))
	refs := fpRefs(map[string]int{"blake2s_ptr_end": 0})

	require.NoError(t, runHint(t, NewProcessor(), Blake2sFinalizeCode, refs, m,
		blake2sConstants(3, 16), NewExecutionScopes()))

	// Two dummy records of 34 words each.
	words, err := m.Memory.GetFeltRange(padBase, 68)
	require.NoError(t, err)
	require.Len(t, words, 68)

	// modified IV, zero message, counter 0, final-block flag, then the
	// compression output.
	assert.Equal(t, newFelt(0x6B08E647), words[0])
	for i := 8; i < 24; i++ {
		assert.Equal(t, newFelt(0), words[i])
	}
	assert.Equal(t, newFelt(0), words[24])
	assert.Equal(t, newFelt(0xffffffff), words[25])
	assert.Equal(t, newFelt(0x307a2169), words[26])

	// The second record repeats the first.
	assert.Equal(t, words[0], words[34])
	assert.Equal(t, words[26], words[60])
}

func TestBlake2sFinalizeV2MessageFirst(t *testing.T) {
	m := newTestMachine()
	padBase := m.Memory.AddSegment()
	setCell(t, m, 0, cvm.NewAddressValue(padBase))
	refs := fpRefs(map[string]int{"blake2s_ptr_end": 0})

	require.NoError(t, runHint(t, NewProcessor(), Blake2sFinalizeV2Code, refs, m,
		blake2sConstants(2, 16), NewExecutionScopes()))

	words, err := m.Memory.GetFeltRange(padBase, 34)
	require.NoError(t, err)

	// The message words open the record, the modified IV follows.
	for i := 0; i < 16; i++ {
		assert.Equal(t, newFelt(0), words[i])
	}
	assert.Equal(t, newFelt(0x6B08E647), words[16])
	assert.Equal(t, newFelt(0x307a2169), words[26])
}

func TestBlake2sFinalizeBadConstants(t *testing.T) {
	m := newTestMachine()
	padBase := m.Memory.AddSegment()
	setCell(t, m, 0, cvm.NewAddressValue(padBase))
	refs := fpRefs(map[string]int{"blake2s_ptr_end": 0})
	p := NewProcessor()

	err := runHint(t, p, Blake2sFinalizeCode, refs, m, Constants{}, NewExecutionScopes())
	assert.ErrorIs(t, err, ErrMissingConstant)

	err = runHint(t, p, Blake2sFinalizeCode, refs, m, blake2sConstants(0, 16), NewExecutionScopes())
	assert.ErrorIs(t, err, ErrValueOutsideRange)

	err = runHint(t, p, Blake2sFinalizeCode, refs, m, blake2sConstants(3, 8), NewExecutionScopes())
	assert.ErrorIs(t, err, ErrValueOutsideRange)
}
