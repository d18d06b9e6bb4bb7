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
// Squash-dict: access-log compaction as a re-entrant state machine
// ---------------------------------------------------------------------------
//
// The surrounding bytecode loop drives these steps one hint call at a time;
// all state between steps (access_indices, keys, key,
// current_access_indices, current_access_index) is plain data carried in the
// execution scope pushed for the squash.

// Squash-dict errors.
var (
	ErrPtrDiffNotDivisible   = errors.New("accesses array size must be divisible by DictAccess.SIZE")
	ErrNAccessesTooBig       = errors.New("n_accesses is too big to be addressed")
	ErrSquashMaxSizeExceeded = errors.New("squash_dict max size exceeded")
	ErrEmptyKeys             = errors.New("no keys left")
	ErrEmptyAccessIndices    = errors.New("current_access_indices is empty")
	ErrAccessIndicesNotEmpty = errors.New("current_access_indices is not empty")
	ErrKeysNotEmpty          = errors.New("keys is not empty")
	ErrNumUsedAccessesAssert = errors.New("n_used_accesses does not match the access count for key")
)

// squashDictMaxSizeVariable optionally caps n_accesses when present in scope.
const squashDictMaxSizeVariable = "__squash_dict_max_size"

func (p *Processor) registerSquashDictHints() {
	p.Register(SquashDictCode, squashDictHint)
	p.Register(SquashDictInnerFirstIterationCode, squashDictInnerFirstIterationHint)
	p.Register(SquashDictInnerSkipLoopCode, squashDictInnerSkipLoopHint)
	p.Register(SquashDictInnerCheckAccessIndexCode, squashDictInnerCheckAccessIndexHint)
	p.Register(SquashDictInnerContinueLoopCode, squashDictInnerContinueLoopHint)
	p.Register(SquashDictInnerLenAssertCode, squashDictInnerLenAssertHint)
	p.Register(SquashDictInnerUsedAccessesAssertCode, squashDictInnerUsedAccessesAssertHint)
	p.Register(SquashDictInnerAssertLenKeysCode, squashDictInnerAssertLenKeysHint)
	p.Register(SquashDictInnerNextKeyCode, squashDictInnerNextKeyHint)
}

func sortFeltsAscending(felts []fp.Element) {
	sort.Slice(felts, func(i, j int) bool { return felts[i].Cmp(&felts[j]) < 0 })
}

func sortFeltsDescending(felts []fp.Element) {
	sort.Slice(felts, func(i, j int) bool { return felts[i].Cmp(&felts[j]) > 0 })
}

// squashDictHint is phase A: bucket the access log's 0-based indices by key,
// leave the descending key worklist and the buckets in scope, and tell the
// circuit whether any key needs the wide range-check strategy.
func squashDictHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	address, err := data.Ids.GetRelocatable("dict_accesses", m)
	if err != nil {
		return err
	}
	ptrDiff, err := data.Ids.GetFelt("ptr_diff", m)
	if err != nil {
		return err
	}
	if new(big.Int).Mod(feltToBig(&ptrDiff), big.NewInt(DictAccessSize)).Sign() != 0 {
		return fmt.Errorf("%w: ptr_diff = %s", ErrPtrDiffNotDivisible, ptrDiff.String())
	}
	nAccessesFelt, err := data.Ids.GetFelt("n_accesses", m)
	if err != nil {
		return err
	}
	if !nAccessesFelt.IsUint64() {
		return fmt.Errorf("%w: %s", ErrNAccessesTooBig, nAccessesFelt.String())
	}
	nAccesses := nAccessesFelt.Uint64()
	if maxSize, err := scopes.GetFelt(squashDictMaxSizeVariable); err == nil {
		if nAccessesFelt.Cmp(&maxSize) > 0 {
			return fmt.Errorf("%w: n_accesses = %d, max = %s", ErrSquashMaxSizeExceeded, nAccesses, maxSize.String())
		}
	}

	accessIndices := make(AccessIndices)
	for i := uint64(0); i < nAccesses; i++ {
		keyAddr, err := address.AddOffset(int64(i * DictAccessSize))
		if err != nil {
			return err
		}
		key, err := m.Memory.GetFelt(keyAddr)
		if err != nil {
			return err
		}
		var index fp.Element
		index.SetUint64(i)
		accessIndices[key] = append(accessIndices[key], index)
	}
	if len(accessIndices) == 0 {
		return fmt.Errorf("%w: empty access log", ErrEmptyKeys)
	}

	keys := make([]fp.Element, 0, len(accessIndices))
	for key := range accessIndices {
		keys = append(keys, key)
	}
	sortFeltsDescending(keys)

	var bigKeys fp.Element
	if bound := m.RangeCheck.Bound(); bound != nil && keys[0].Cmp(bound) >= 0 {
		bigKeys.SetOne()
	}
	if err := data.Ids.InsertFelt("big_keys", &bigKeys, m); err != nil {
		return err
	}

	firstKey := keys[len(keys)-1]
	keys = keys[:len(keys)-1]
	if err := data.Ids.InsertFelt("first_key", &firstKey, m); err != nil {
		return err
	}

	scopes.AssignOrUpdate("access_indices", accessIndices)
	scopes.AssignOrUpdate("keys", FeltListValue{Felts: keys})
	scopes.AssignOrUpdate("key", FeltValue{Felt: firstKey})
	return nil
}

// squashDictInnerFirstIterationHint seeds the per-key inner loop: sort the
// key's access indices, emit the smallest to the range-check stream, and
// keep the rest (descending) in scope.
func squashDictInnerFirstIterationHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	key, err := scopes.GetFelt("key")
	if err != nil {
		return err
	}
	accessIndices, err := scopes.GetAccessIndices("access_indices")
	if err != nil {
		return err
	}
	bucket, ok := accessIndices[key]
	if !ok || len(bucket) == 0 {
		return fmt.Errorf("%w: key %s", ErrEmptyAccessIndices, key.String())
	}
	indices := make([]fp.Element, len(bucket))
	copy(indices, bucket)
	sortFeltsAscending(indices)
	// Descending with the smallest on top, so pops walk the original
	// ascending order.
	reverseFelts(indices)

	current := indices[len(indices)-1]
	indices = indices[:len(indices)-1]

	rcPtr, err := data.Ids.GetRelocatable("range_check_ptr", m)
	if err != nil {
		return err
	}
	if err := m.Memory.Set(rcPtr, vm.NewFeltValue(&current)); err != nil {
		return err
	}

	scopes.AssignOrUpdate("current_access_indices", FeltListValue{Felts: indices})
	scopes.AssignOrUpdate("current_access_index", FeltValue{Felt: current})
	return nil
}

func reverseFelts(felts []fp.Element) {
	for i, j := 0, len(felts)-1; i < j; i, j = i+1, j-1 {
		felts[i], felts[j] = felts[j], felts[i]
	}
}

func squashDictInnerSkipLoopHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	indices, err := scopes.GetFeltList("current_access_indices")
	if err != nil {
		return err
	}
	var shouldSkip fp.Element
	if len(indices) == 0 {
		shouldSkip.SetOne()
	}
	return data.Ids.InsertFelt("should_skip_loop", &shouldSkip, m)
}

// loop_temps field layout: index_delta_minus1 is the first cell, the
// should_continue flag the fourth.
const (
	loopTempsIndexDeltaMinus1 = 0
	loopTempsShouldContinue   = 3
)

// squashDictInnerCheckAccessIndexHint pops the next access index and emits
// the gap to the previous one, minus one, for the circuit to range-check.
// A non-negative gap is exactly the ascending-order soundness condition.
func squashDictInnerCheckAccessIndexHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	indices, err := scopes.GetFeltList("current_access_indices")
	if err != nil {
		return err
	}
	if len(indices) == 0 {
		return ErrEmptyAccessIndices
	}
	current, err := scopes.GetFelt("current_access_index")
	if err != nil {
		return err
	}
	next := indices[len(indices)-1]
	indices = indices[:len(indices)-1]

	var one, delta fp.Element
	one.SetOne()
	delta.Sub(&next, &current)
	delta.Sub(&delta, &one)

	scopes.AssignOrUpdate("current_access_indices", FeltListValue{Felts: indices})
	scopes.AssignOrUpdate("current_access_index", FeltValue{Felt: next})
	return data.Ids.InsertStructField("loop_temps", loopTempsIndexDeltaMinus1, vm.NewFeltValue(&delta), m)
}

func squashDictInnerContinueLoopHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	indices, err := scopes.GetFeltList("current_access_indices")
	if err != nil {
		return err
	}
	var shouldContinue fp.Element
	if len(indices) > 0 {
		shouldContinue.SetOne()
	}
	return data.Ids.InsertStructField("loop_temps", loopTempsShouldContinue, vm.NewFeltValue(&shouldContinue), m)
}

// squashDictInnerLenAssertHint verifies the inner loop consumed every access
// index for the key; a leftover means an index was lost.
func squashDictInnerLenAssertHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	indices, err := scopes.GetFeltList("current_access_indices")
	if err != nil {
		return err
	}
	if len(indices) != 0 {
		return fmt.Errorf("%w: %d left", ErrAccessIndicesNotEmpty, len(indices))
	}
	return nil
}

func squashDictInnerUsedAccessesAssertHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	key, err := scopes.GetFelt("key")
	if err != nil {
		return err
	}
	accessIndices, err := scopes.GetAccessIndices("access_indices")
	if err != nil {
		return err
	}
	nUsed, err := data.Ids.GetFelt("n_used_accesses", m)
	if err != nil {
		return err
	}
	var expected fp.Element
	expected.SetUint64(uint64(len(accessIndices[key])))
	if !nUsed.Equal(&expected) {
		return fmt.Errorf("%w: key %s used %s, expected %s",
			ErrNumUsedAccessesAssert, key.String(), nUsed.String(), expected.String())
	}
	return nil
}

func squashDictInnerAssertLenKeysHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	keys, err := scopes.GetFeltList("keys")
	if err != nil {
		return err
	}
	if len(keys) != 0 {
		return fmt.Errorf("%w: %d left", ErrKeysNotEmpty, len(keys))
	}
	return nil
}

// squashDictInnerNextKeyHint pops the next key off the descending worklist
// and restarts the inner loop for it.
func squashDictInnerNextKeyHint(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	keys, err := scopes.GetFeltList("keys")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return ErrEmptyKeys
	}
	next := keys[len(keys)-1]
	keys = keys[:len(keys)-1]
	scopes.AssignOrUpdate("keys", FeltListValue{Felts: keys})
	scopes.AssignOrUpdate("key", FeltValue{Felt: next})
	return data.Ids.InsertFelt("next_key", &next, m)
}
