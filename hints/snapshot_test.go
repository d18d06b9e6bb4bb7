package hints

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cvm "github.com/chazu/cairn/vm"
)

func TestCaptureSnapshot(t *testing.T) {
	m := newTestMachine()
	scopes := NewExecutionScopes()
	scopes.AssignOrUpdate("n", FeltValue{Felt: newFelt(3)})
	scopes.EnterScope(map[string]ScopeValue{
		"keys": FeltListValue{Felts: []fp.Element{newFelt(1), newFelt(2)}},
	})

	handle, err := dictManager(scopes)
	require.NoError(t, err)
	manager, err := handle.Manager()
	require.NoError(t, err)
	defaultValue := cvm.NewUint64Value(7)
	base, err := manager.NewDefaultDict(m.Memory, defaultValue, MemoryDict{
		cvm.NewUint64Value(1): cvm.NewUint64Value(10),
	})
	require.NoError(t, err)

	snapshot := CaptureSnapshot(scopes)
	require.Len(t, snapshot.Scopes, 2)
	assert.Equal(t, "3", snapshot.Scopes[0]["n"])
	assert.Equal(t, "list(2)", snapshot.Scopes[1]["keys"])
	assert.Equal(t, "dict_manager", snapshot.Scopes[1][dictManagerVariable])

	require.Len(t, snapshot.Trackers, 1)
	tracker := snapshot.Trackers[0]
	assert.Equal(t, base.SegmentIndex, tracker.Segment)
	assert.Equal(t, base.String(), tracker.CurrentPtr)
	assert.Equal(t, "7", tracker.Default)
	assert.Equal(t, map[string]string{"1": "10"}, tracker.Entries)
}

func TestSnapshotRoundTrip(t *testing.T) {
	scopes := NewExecutionScopes()
	scopes.AssignOrUpdate("key", FeltValue{Felt: newFelt(42)})

	snapshot := CaptureSnapshot(scopes)
	encoded, err := snapshot.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(encoded)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Scopes, decoded.Scopes)
	assert.Empty(t, decoded.Trackers)
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte{0xff, 0x00, 0x13})
	assert.Error(t, err)
}
