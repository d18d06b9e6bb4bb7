package hints

import (
	"errors"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Constants is the interpreter-supplied table of program constants, keyed by
// fully qualified name.
type Constants map[string]fp.Element

// ErrMissingConstant reports a constant a hint needs but the program never
// registered.
var ErrMissingConstant = errors.New("missing constant")

// Get resolves a constant by suffix match: a hint variable named SHIFT
// matches a constant registered as some.module.path.SHIFT (or exactly
// SHIFT).
func (c Constants) Get(name string) (fp.Element, error) {
	if felt, ok := c[name]; ok {
		return felt, nil
	}
	suffix := "." + name
	for qualified, felt := range c {
		if strings.HasSuffix(qualified, suffix) {
			return felt, nil
		}
	}
	return fp.Element{}, fmt.Errorf("%w: %s", ErrMissingConstant, name)
}

// GetUint64 resolves a constant that must fit in a machine word.
func (c Constants) GetUint64(name string) (uint64, error) {
	felt, err := c.Get(name)
	if err != nil {
		return 0, err
	}
	if !felt.IsUint64() {
		return 0, fmt.Errorf("constant %s does not fit in a uint64", name)
	}
	return felt.Uint64(), nil
}
