package vm

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// ---------------------------------------------------------------------------
// Relocatable: segment-relative memory address
// ---------------------------------------------------------------------------

// Addressing errors.
var (
	ErrSegmentMismatch = errors.New("relocatable arithmetic across different segments")
	ErrOffsetUnderflow = errors.New("relocatable offset underflow")
	ErrOffsetOverflow  = errors.New("relocatable offset exceeds addressable range")
	ErrExpectedFelt    = errors.New("expected a field element, found a relocatable")
	ErrExpectedAddress = errors.New("expected a relocatable, found a field element")
)

// Relocatable is an address into segmented memory. Segment indices may be
// negative, denoting a temporary segment not yet merged into the main
// address space.
type Relocatable struct {
	SegmentIndex int
	Offset       uint64
}

// NewRelocatable builds an address from a segment index and offset.
func NewRelocatable(segment int, offset uint64) Relocatable {
	return Relocatable{SegmentIndex: segment, Offset: offset}
}

// AddOffset returns the address shifted by a signed delta within the same
// segment. Underflow below offset 0 is an error.
func (r Relocatable) AddOffset(delta int64) (Relocatable, error) {
	if delta < 0 {
		abs := uint64(-delta)
		if abs > r.Offset {
			return Relocatable{}, fmt.Errorf("%w: %s + %d", ErrOffsetUnderflow, r, delta)
		}
		return Relocatable{r.SegmentIndex, r.Offset - abs}, nil
	}
	offset := r.Offset + uint64(delta)
	if offset < r.Offset {
		return Relocatable{}, fmt.Errorf("%w: %s + %d", ErrOffsetOverflow, r, delta)
	}
	return Relocatable{r.SegmentIndex, offset}, nil
}

// AddFelt returns the address advanced by a field element. The felt must fit
// in the addressable (uint64) range.
func (r Relocatable) AddFelt(f *fp.Element) (Relocatable, error) {
	if !f.IsUint64() {
		return Relocatable{}, fmt.Errorf("%w: %s + %s", ErrOffsetOverflow, r, f.String())
	}
	offset := r.Offset + f.Uint64()
	if offset < r.Offset {
		return Relocatable{}, fmt.Errorf("%w: %s + %s", ErrOffsetOverflow, r, f.String())
	}
	return Relocatable{r.SegmentIndex, offset}, nil
}

// Sub returns the offset distance r - other. Both addresses must live in the
// same segment and other must not be past r.
func (r Relocatable) Sub(other Relocatable) (uint64, error) {
	if r.SegmentIndex != other.SegmentIndex {
		return 0, fmt.Errorf("%w: %s - %s", ErrSegmentMismatch, r, other)
	}
	if other.Offset > r.Offset {
		return 0, fmt.Errorf("%w: %s - %s", ErrOffsetUnderflow, r, other)
	}
	return r.Offset - other.Offset, nil
}

// String renders the address in segment:offset form.
func (r Relocatable) String() string {
	return fmt.Sprintf("%d:%d", r.SegmentIndex, r.Offset)
}

// ---------------------------------------------------------------------------
// MaybeRelocatable: felt-or-address value union
// ---------------------------------------------------------------------------

type valueKind uint8

const (
	kindFelt valueKind = iota
	kindAddress
)

// MaybeRelocatable is a memory cell value: either a field element or a
// Relocatable address. Comparison and arithmetic are defined only between
// two field elements; mixing variants is an error, not a coercion.
//
// The zero MaybeRelocatable is the felt 0.
type MaybeRelocatable struct {
	kind valueKind
	felt fp.Element
	addr Relocatable
}

// NewFeltValue wraps a field element.
func NewFeltValue(f *fp.Element) MaybeRelocatable {
	return MaybeRelocatable{kind: kindFelt, felt: *f}
}

// NewUint64Value wraps a small integer as a field element.
func NewUint64Value(u uint64) MaybeRelocatable {
	var f fp.Element
	f.SetUint64(u)
	return MaybeRelocatable{kind: kindFelt, felt: f}
}

// NewAddressValue wraps a relocatable address.
func NewAddressValue(r Relocatable) MaybeRelocatable {
	return MaybeRelocatable{kind: kindAddress, addr: r}
}

// IsFelt returns true if the value is a field element.
func (m MaybeRelocatable) IsFelt() bool {
	return m.kind == kindFelt
}

// IsAddress returns true if the value is a relocatable address.
func (m MaybeRelocatable) IsAddress() bool {
	return m.kind == kindAddress
}

// Felt returns the field element payload, failing on an address.
func (m MaybeRelocatable) Felt() (fp.Element, error) {
	if m.kind != kindFelt {
		return fp.Element{}, fmt.Errorf("%w: %s", ErrExpectedFelt, m)
	}
	return m.felt, nil
}

// Address returns the relocatable payload, failing on a field element.
func (m MaybeRelocatable) Address() (Relocatable, error) {
	if m.kind != kindAddress {
		return Relocatable{}, fmt.Errorf("%w: %s", ErrExpectedAddress, m)
	}
	return m.addr, nil
}

// Add sums two values: felt+felt adds in the field, address+felt advances
// the address. felt+address and address+address are invalid.
func (m MaybeRelocatable) Add(other MaybeRelocatable) (MaybeRelocatable, error) {
	switch {
	case m.kind == kindFelt && other.kind == kindFelt:
		var sum fp.Element
		sum.Add(&m.felt, &other.felt)
		return NewFeltValue(&sum), nil
	case m.kind == kindAddress && other.kind == kindFelt:
		addr, err := m.addr.AddFelt(&other.felt)
		if err != nil {
			return MaybeRelocatable{}, err
		}
		return NewAddressValue(addr), nil
	default:
		return MaybeRelocatable{}, fmt.Errorf("%w: %s + %s", ErrExpectedFelt, m, other)
	}
}

// Equal reports value equality across the union.
func (m MaybeRelocatable) Equal(other MaybeRelocatable) bool {
	if m.kind != other.kind {
		return false
	}
	if m.kind == kindAddress {
		return m.addr == other.addr
	}
	return m.felt.Equal(&other.felt)
}

// String renders the payload for diagnostics.
func (m MaybeRelocatable) String() string {
	if m.kind == kindAddress {
		return m.addr.String()
	}
	return m.felt.String()
}
