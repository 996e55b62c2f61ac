package console

import (
	"sort"
	"sync"

	"orderdesk/internal/model"
)

// Selection tracks which rendered rows are marked, keyed by the derived
// RowKey. Keys from a replaced snapshot stay in the map but are inert: every
// read goes back through the live snapshot, so a stale key can never address
// an order it did not originally describe.
type Selection struct {
	mu     sync.Mutex
	marked map[string]bool
}

func NewSelection() *Selection {
	return &Selection{marked: make(map[string]bool)}
}

// Toggle flips membership for a row key.
func (s *Selection) Toggle(key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.marked[key] = !s.marked[key]
	s.mu.Unlock()
}

// IsSelected reports whether a key is currently marked.
func (s *Selection) IsSelected(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked[key]
}

// Clear resets the selection to empty.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.marked = make(map[string]bool)
	s.mu.Unlock()
}

// Keys returns the marked keys in stable order, for display.
func (s *Selection) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.marked))
	for key, on := range s.marked {
		if on {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// SelectedPending resolves the marked rows against the live pending bucket by
// re-deriving each row's key. Cancel and modify must act on the pending rows
// as they exist right now, not on rows cached at click time.
func (s *Selection) SelectedPending(snap model.OrderSnapshot) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for idx, row := range snap.Pending {
		if s.marked[model.RowKey(row, idx)] {
			out = append(out, row)
		}
	}
	return out
}
