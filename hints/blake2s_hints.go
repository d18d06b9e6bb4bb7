package hints

import (
	"fmt"
	"math/bits"

	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// Blake2s hints
// ---------------------------------------------------------------------------

// blake2sIV is the standard blake2s initialization vector.
var blake2sIV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

var blake2sSigma = [10][16]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
}

func blake2sMix(v *[16]uint32, a, b, c, d int, x, y uint32) {
	v[a] = v[a] + v[b] + x
	v[d] = bits.RotateLeft32(v[d]^v[a], -16)
	v[c] = v[c] + v[d]
	v[b] = bits.RotateLeft32(v[b]^v[c], -12)
	v[a] = v[a] + v[b] + y
	v[d] = bits.RotateLeft32(v[d]^v[a], -8)
	v[c] = v[c] + v[d]
	v[b] = bits.RotateLeft32(v[b]^v[c], -7)
}

// blake2sCompress runs the blake2s compression function over one message
// block with the given state and counter/finalization words.
func blake2sCompress(h [8]uint32, message [16]uint32, t0, t1, f0, f1 uint32) [8]uint32 {
	var v [16]uint32
	copy(v[:8], h[:])
	copy(v[8:], blake2sIV[:])
	v[12] ^= t0
	v[13] ^= t1
	v[14] ^= f0
	v[15] ^= f1

	for round := 0; round < 10; round++ {
		s := &blake2sSigma[round]
		blake2sMix(&v, 0, 4, 8, 12, message[s[0]], message[s[1]])
		blake2sMix(&v, 1, 5, 9, 13, message[s[2]], message[s[3]])
		blake2sMix(&v, 2, 6, 10, 14, message[s[4]], message[s[5]])
		blake2sMix(&v, 3, 7, 11, 15, message[s[6]], message[s[7]])
		blake2sMix(&v, 0, 5, 10, 15, message[s[8]], message[s[9]])
		blake2sMix(&v, 1, 6, 11, 12, message[s[10]], message[s[11]])
		blake2sMix(&v, 2, 7, 8, 13, message[s[12]], message[s[13]])
		blake2sMix(&v, 3, 4, 9, 14, message[s[14]], message[s[15]])
	}

	var out [8]uint32
	for i := range out {
		out[i] = h[i] ^ v[i] ^ v[i+8]
	}
	return out
}

func (p *Processor) registerBlake2sHints() {
	p.Register(Blake2sFinalizeCode, blake2sFinalizeHint(false))
	p.Register(Blake2sFinalizeV2Code, blake2sFinalizeHint(true))
}

// blake2sFinalizeHint pads the builtin's instance segment with dummy
// (input, output) pairs so the table reaches its fixed instance count. The
// two catalogue variants differ only in whether the dummy record opens with
// the message words or the modified IV; both orderings are kept as distinct
// operations.
func blake2sFinalizeHint(messageFirst bool) Handler {
	return func(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
		nPacked, err := constants.GetUint64("N_PACKED_INSTANCES")
		if err != nil {
			return err
		}
		if nPacked == 0 || nPacked >= 20 {
			return fmt.Errorf("%w: N_PACKED_INSTANCES = %d", ErrValueOutsideRange, nPacked)
		}
		chunkSize, err := constants.GetUint64("BLAKE2S_INPUT_CHUNK_SIZE_FELTS")
		if err != nil {
			return err
		}
		if chunkSize != 16 {
			return fmt.Errorf("%w: BLAKE2S_INPUT_CHUNK_SIZE_FELTS = %d", ErrValueOutsideRange, chunkSize)
		}

		var message [16]uint32
		modifiedIV := blake2sIV
		modifiedIV[0] ^= 0x01010020
		output := blake2sCompress(modifiedIV, message, 0, 0, 0xffffffff, 0)

		record := make([]uint32, 0, 8+16+2+8)
		if messageFirst {
			record = append(record, message[:]...)
			record = append(record, modifiedIV[:]...)
		} else {
			record = append(record, modifiedIV[:]...)
			record = append(record, message[:]...)
		}
		record = append(record, 0, 0xffffffff)
		record = append(record, output[:]...)

		padding := make([]vm.MaybeRelocatable, 0, uint64(len(record))*(nPacked-1))
		for i := uint64(1); i < nPacked; i++ {
			for _, word := range record {
				padding = append(padding, vm.NewUint64Value(uint64(word)))
			}
		}

		ptrEnd, err := data.Ids.GetRelocatable("blake2s_ptr_end", m)
		if err != nil {
			return err
		}
		_, err = m.Memory.LoadData(ptrEnd, padding)
		return err
	}
}
