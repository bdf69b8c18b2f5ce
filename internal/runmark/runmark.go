// Package runmark persists the last-successful-run marker. The orchestrator
// reads it at startup and advances it only after a run has been fully
// published, so a failed run never moves it.
package runmark

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// State is the persisted marker.
type State struct {
	LastRunDate string    `json:"last_run_date"` // YYYY-MM-DD
	LastRunID   string    `json:"last_run_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manager guards the marker file with a mutex.
type Manager struct {
	mu       sync.Mutex
	state    State
	filePath string
}

// NewManager creates a Manager, loading existing state from disk if present.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{filePath: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &m.state); err != nil {
		return nil, err
	}
	return m, nil
}

// Last returns the date of the last successful run, and false when no run
// has succeeded yet.
func (m *Manager) Last() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.LastRunDate == "" {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", m.state.LastRunDate)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// Advance records a successful run and writes the marker to disk.
func (m *Manager) Advance(runDate time.Time, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{
		LastRunDate: runDate.Format("2006-01-02"),
		LastRunID:   runID,
		UpdatedAt:   time.Now(),
	}
	data, err := json.MarshalIndent(&m.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, data, 0644)
}
