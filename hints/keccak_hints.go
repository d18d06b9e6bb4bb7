package hints

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"golang.org/x/crypto/sha3"
)

// ---------------------------------------------------------------------------
// Keccak hints
// ---------------------------------------------------------------------------

// ErrKeccakMaxSize reports an input longer than the scope-imposed cap.
var ErrKeccakMaxSize = errors.New("unsafe_keccak length exceeds __keccak_max_size")

// keccakMaxSizeVariable optionally caps the input length when set in scope.
const keccakMaxSizeVariable = "__keccak_max_size"

func (p *Processor) registerKeccakHints() {
	p.Register(UnsafeKeccakCode, unsafeKeccakHint)
}

// unsafeKeccakHint hashes length bytes packed 16-per-word starting at
// ids.data and splits the digest into two 128-bit felts.
func unsafeKeccakHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	dataPtr, err := data.Ids.GetRelocatable("data", m)
	if err != nil {
		return err
	}
	lengthFelt, err := data.Ids.GetFelt("length", m)
	if err != nil {
		return err
	}
	if !lengthFelt.IsUint64() {
		return fmt.Errorf("%w: length = %s", ErrValueOutsideRange, lengthFelt.String())
	}
	length := lengthFelt.Uint64()
	if maxSize, err := scopes.GetFelt(keccakMaxSizeVariable); err == nil {
		if lengthFelt.Cmp(&maxSize) > 0 {
			return fmt.Errorf("%w: length = %d, max = %s", ErrKeccakMaxSize, length, maxSize.String())
		}
	}

	input := make([]byte, 0, length)
	for wordIndex, byteIndex := int64(0), uint64(0); byteIndex < length; wordIndex, byteIndex = wordIndex+1, byteIndex+16 {
		wordAddr, err := dataPtr.AddOffset(wordIndex)
		if err != nil {
			return err
		}
		word, err := m.Memory.GetFelt(wordAddr)
		if err != nil {
			return err
		}
		nBytes := length - byteIndex
		if nBytes > 16 {
			nBytes = 16
		}
		bigWord := feltToBig(&word)
		if uint64(bigWord.BitLen()) > 8*nBytes {
			return fmt.Errorf("%w: word at %s exceeds %d bytes", ErrValueOutsideRange, wordAddr, nBytes)
		}
		chunk := make([]byte, nBytes)
		bigWord.FillBytes(chunk)
		input = append(input, chunk...)
	}

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(input)
	digest := hasher.Sum(nil)

	var high, low fp.Element
	high.SetBigInt(new(big.Int).SetBytes(digest[:16]))
	low.SetBigInt(new(big.Int).SetBytes(digest[16:32]))
	if err := data.Ids.InsertFelt("high", &high, m); err != nil {
		return err
	}
	return data.Ids.InsertFelt("low", &low, m)
}
