package runmark

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AdvanceAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker.json")

	m, err := NewManager(path)
	require.NoError(t, err)
	_, ok := m.Last()
	assert.False(t, ok)

	runDate := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.Advance(runDate, "run-1"))

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, runDate, last)

	// A fresh manager must see the persisted marker.
	reloaded, err := NewManager(path)
	require.NoError(t, err)
	last, ok = reloaded.Last()
	require.True(t, ok)
	assert.Equal(t, runDate, last)
}
