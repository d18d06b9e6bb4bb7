package hints

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Snapshot: post-run diagnostic dump of scopes and dictionary trackers
// ---------------------------------------------------------------------------

// TrackerSnapshot is the serializable view of one dictionary tracker.
type TrackerSnapshot struct {
	Segment    int               `cbor:"segment"`
	CurrentPtr string            `cbor:"current_ptr"`
	Default    string            `cbor:"default,omitempty"`
	Entries    map[string]string `cbor:"entries"`
}

// ScopeSnapshot is the serializable view of one scope's variables, rendered
// as strings.
type ScopeSnapshot map[string]string

// Snapshot captures the hint runtime's state at one point of a run, for
// offline diagnosis. It is a debugging artifact, never an input.
type Snapshot struct {
	Scopes   []ScopeSnapshot   `cbor:"scopes"`
	Trackers []TrackerSnapshot `cbor:"trackers"`
}

// CaptureSnapshot renders the scope stack (base first) and any dictionary
// trackers reachable through the shared manager handle.
func CaptureSnapshot(scopes *ExecutionScopes) *Snapshot {
	snapshot := &Snapshot{}
	for _, scope := range scopes.data {
		rendered := make(ScopeSnapshot, len(scope))
		for name, value := range scope {
			rendered[name] = renderScopeValue(value)
		}
		snapshot.Scopes = append(snapshot.Scopes, rendered)
	}

	handle, err := scopes.GetDictManagerHandle(dictManagerVariable)
	if err != nil {
		return snapshot
	}
	manager, err := handle.Manager()
	if err != nil {
		return snapshot
	}
	segments := make([]int, 0, len(manager.Trackers()))
	for segment := range manager.Trackers() {
		segments = append(segments, segment)
	}
	sort.Ints(segments)
	for _, segment := range segments {
		tracker := manager.Trackers()[segment]
		entries := make(map[string]string, tracker.Len())
		for key, value := range tracker.CopyData() {
			entries[key.String()] = value.String()
		}
		ts := TrackerSnapshot{
			Segment:    segment,
			CurrentPtr: tracker.CurrentPtr.String(),
			Entries:    entries,
		}
		if defaultValue, ok := tracker.DefaultValue(); ok {
			ts.Default = defaultValue.String()
		}
		snapshot.Trackers = append(snapshot.Trackers, ts)
	}
	return snapshot
}

// Marshal encodes the snapshot as cbor.
func (s *Snapshot) Marshal() ([]byte, error) {
	return cbor.Marshal(s)
}

// DecodeSnapshot reads a snapshot back from its cbor encoding.
func DecodeSnapshot(encoded []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := cbor.Unmarshal(encoded, &snapshot); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return &snapshot, nil
}

func renderScopeValue(value ScopeValue) string {
	switch v := value.(type) {
	case FeltValue:
		return v.Felt.String()
	case BigIntValue:
		return v.Int.String()
	case FeltListValue:
		return fmt.Sprintf("list(%d)", len(v.Felts))
	case AccessIndices:
		return fmt.Sprintf("access_indices(%d keys)", len(v))
	case MemoryDict:
		return fmt.Sprintf("dict(%d entries)", len(v))
	case *DictManagerHandle:
		return "dict_manager"
	default:
		return fmt.Sprintf("%T", value)
	}
}
