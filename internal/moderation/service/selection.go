package service

import (
	"sync"

	"github.com/google/uuid"
)

// SelectionSet tracks which pending images are marked for a bulk action.
// Order of insertion is preserved so a bulk approval processes images in
// the order the reviewer picked them.
type SelectionSet struct {
	mu      sync.Mutex
	members map[uuid.UUID]int
	order   []uuid.UUID
}

// NewSelectionSet constructs an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{members: make(map[uuid.UUID]int)}
}

// Toggle adds the id when absent and removes it when present. It reports
// whether the id is selected afterwards.
func (s *SelectionSet) Toggle(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; ok {
		s.removeLocked(id)
		return false
	}
	s.members[id] = len(s.order)
	s.order = append(s.order, id)
	return true
}

// Select adds the id if it is not already selected.
func (s *SelectionSet) Select(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; ok {
		return
	}
	s.members[id] = len(s.order)
	s.order = append(s.order, id)
}

// Deselect removes the id if present.
func (s *SelectionSet) Deselect(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// ToggleAll selects every given id when at least one is unselected, and
// clears the selection when all of them are already selected.
func (s *SelectionSet) ToggleAll(ids []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allSelected := len(ids) > 0
	for _, id := range ids {
		if _, ok := s.members[id]; !ok {
			allSelected = false
			break
		}
	}

	if allSelected {
		s.members = make(map[uuid.UUID]int)
		s.order = nil
		return
	}
	for _, id := range ids {
		if _, ok := s.members[id]; !ok {
			s.members[id] = len(s.order)
			s.order = append(s.order, id)
		}
	}
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = make(map[uuid.UUID]int)
	s.order = nil
}

// Contains reports whether the id is selected.
func (s *SelectionSet) Contains(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// Len returns how many images are selected.
func (s *SelectionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Selected returns the selected ids in insertion order.
func (s *SelectionSet) Selected() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

func (s *SelectionSet) removeLocked(id uuid.UUID) {
	idx, ok := s.members[id]
	if !ok {
		return
	}
	delete(s.members, id)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	for i := idx; i < len(s.order); i++ {
		s.members[s.order[i]] = i
	}
}
