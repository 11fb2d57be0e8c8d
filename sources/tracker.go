package sources

import (
	"sync"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Tracker holds the committed working set of one report. Loads are tagged
// with a generation; only the newest generation may commit, so a slow older
// load can never overwrite a newer one.
type Tracker struct {
	mu      sync.RWMutex
	latest  uint64
	current *WorkingSet
}

// Begin starts a load and returns its generation token.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	return t.latest
}

// Commit replaces the working set if gen is still the newest generation.
func (t *Tracker) Commit(gen uint64, ws *WorkingSet) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.latest {
		return false
	}
	t.current = ws
	return true
}

// Current returns the committed working set, or nil before the first commit.
func (t *Tracker) Current() *WorkingSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Status is loading until the first commit and the set's status after.
func (t *Tracker) Status() models.DataStatus {
	ws := t.Current()
	if ws == nil {
		return models.StatusLoading
	}
	return ws.Status
}
