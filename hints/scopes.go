package hints

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

	"github.com/chazu/cairn/vm"
)

// ---------------------------------------------------------------------------
// ScopeValue: the closed set of kinds a scope variable may hold
// ---------------------------------------------------------------------------

// ScopeValue is a value stored in an execution scope. The set of kinds is
// closed: a field element, a big integer, a felt list, felt-keyed access
// index buckets, a memory-value map, or a shared dictionary manager handle.
type ScopeValue interface {
	isScopeValue()
}

// FeltValue is a scope-held field element.
type FeltValue struct {
	Felt fp.Element
}

// BigIntValue is a scope-held arbitrary-precision integer.
type BigIntValue struct {
	Int *big.Int
}

// FeltListValue is a scope-held ordered list of field elements.
type FeltListValue struct {
	Felts []fp.Element
}

// AccessIndices maps a dictionary key to the ordered list of access-log
// indices that touched it.
type AccessIndices map[fp.Element][]fp.Element

// MemoryDict is a scope-held map between memory values, used to seed a new
// dictionary from a copied one.
type MemoryDict map[vm.MaybeRelocatable]vm.MaybeRelocatable

func (FeltValue) isScopeValue()          {}
func (BigIntValue) isScopeValue()        {}
func (FeltListValue) isScopeValue()      {}
func (AccessIndices) isScopeValue()      {}
func (MemoryDict) isScopeValue()         {}
func (*DictManagerHandle) isScopeValue() {}

// ---------------------------------------------------------------------------
// ExecutionScopes: stacked namespaces carrying state between hint calls
// ---------------------------------------------------------------------------

// Scope errors.
var (
	ErrVariableNotInScope  = errors.New("variable not in scope")
	ErrCannotExitBaseScope = errors.New("cannot exit the base scope")
)

// ExecutionScopes is an ordered stack of name -> value namespaces. A base
// scope always exists; lookups see only the top scope, with no fallthrough
// to enclosing scopes.
type ExecutionScopes struct {
	data []map[string]ScopeValue
}

// NewExecutionScopes creates a scope stack holding only the base scope.
func NewExecutionScopes() *ExecutionScopes {
	return &ExecutionScopes{data: []map[string]ScopeValue{make(map[string]ScopeValue)}}
}

// EnterScope pushes a new namespace holding the given initial variables.
func (es *ExecutionScopes) EnterScope(vars map[string]ScopeValue) {
	if vars == nil {
		vars = make(map[string]ScopeValue)
	}
	es.data = append(es.data, vars)
}

// ExitScope pops the top namespace, releasing any dictionary manager handle
// it holds. Popping the base scope is an error.
func (es *ExecutionScopes) ExitScope() error {
	if len(es.data) <= 1 {
		return ErrCannotExitBaseScope
	}
	top := es.data[len(es.data)-1]
	es.data = es.data[:len(es.data)-1]
	for _, value := range top {
		if handle, ok := value.(*DictManagerHandle); ok {
			handle.Release()
		}
	}
	return nil
}

// Depth returns the number of live scopes, the base scope included.
func (es *ExecutionScopes) Depth() int {
	return len(es.data)
}

func (es *ExecutionScopes) top() map[string]ScopeValue {
	return es.data[len(es.data)-1]
}

// Get returns the named variable from the top scope.
func (es *ExecutionScopes) Get(name string) (ScopeValue, error) {
	value, ok := es.top()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVariableNotInScope, name)
	}
	return value, nil
}

// AssignOrUpdate inserts or overwrites a variable in the top scope.
func (es *ExecutionScopes) AssignOrUpdate(name string, value ScopeValue) {
	es.top()[name] = value
}

// DeleteVariable removes a variable from the top scope, if present.
func (es *ExecutionScopes) DeleteVariable(name string) {
	delete(es.top(), name)
}

// GetFelt returns a felt-kinded variable from the top scope.
func (es *ExecutionScopes) GetFelt(name string) (fp.Element, error) {
	value, err := es.Get(name)
	if err != nil {
		return fp.Element{}, err
	}
	felt, ok := value.(FeltValue)
	if !ok {
		return fp.Element{}, fmt.Errorf("%w: %s is not a field element", ErrVariableNotInScope, name)
	}
	return felt.Felt, nil
}

// GetBigInt returns a big-integer variable from the top scope.
func (es *ExecutionScopes) GetBigInt(name string) (*big.Int, error) {
	value, err := es.Get(name)
	if err != nil {
		return nil, err
	}
	b, ok := value.(BigIntValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a big integer", ErrVariableNotInScope, name)
	}
	return b.Int, nil
}

// GetFeltList returns a felt-list variable from the top scope.
func (es *ExecutionScopes) GetFeltList(name string) ([]fp.Element, error) {
	value, err := es.Get(name)
	if err != nil {
		return nil, err
	}
	list, ok := value.(FeltListValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a felt list", ErrVariableNotInScope, name)
	}
	return list.Felts, nil
}

// GetAccessIndices returns the access-index buckets from the top scope.
func (es *ExecutionScopes) GetAccessIndices(name string) (AccessIndices, error) {
	value, err := es.Get(name)
	if err != nil {
		return nil, err
	}
	indices, ok := value.(AccessIndices)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an access-indices map", ErrVariableNotInScope, name)
	}
	return indices, nil
}

// GetMemoryDict returns a memory-value map from the top scope.
func (es *ExecutionScopes) GetMemoryDict(name string) (MemoryDict, error) {
	value, err := es.Get(name)
	if err != nil {
		return nil, err
	}
	dict, ok := value.(MemoryDict)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a memory dict", ErrVariableNotInScope, name)
	}
	return dict, nil
}

// GetDictManagerHandle returns the shared dictionary manager handle from the
// top scope.
func (es *ExecutionScopes) GetDictManagerHandle(name string) (*DictManagerHandle, error) {
	value, err := es.Get(name)
	if err != nil {
		return nil, err
	}
	handle, ok := value.(*DictManagerHandle)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a dict manager handle", ErrVariableNotInScope, name)
	}
	return handle, nil
}
