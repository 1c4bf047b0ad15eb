package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/omniscan/internal/models"
)

// HistoryStore keeps the session's scan entries, newest first
type HistoryStore struct {
	entries     []models.ScanEntry
	subscribers map[int]chan models.HistoryEvent
	nextSubID   int
	mu          sync.RWMutex
}

func New() *HistoryStore {
	return &HistoryStore{
		subscribers: make(map[int]chan models.HistoryEvent),
	}
}

// Record inserts the entry at the front, or replaces the entry with the
// same ID in place.
func (s *HistoryStore) Record(entry models.ScanEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(entry.ID); idx >= 0 {
		s.entries[idx] = entry
		s.publish(models.HistoryEvent{Type: models.EventUpdated, Entry: &entry})
		return
	}

	s.entries = append([]models.ScanEntry{entry}, s.entries...)
	s.publish(models.HistoryEvent{Type: models.EventCreated, Entry: &entry})
}

// Update replaces an existing entry in place. It reports false and leaves the
// history untouched when the ID is not present.
func (s *HistoryStore) Update(entry models.ScanEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(entry.ID)
	if idx < 0 {
		return false
	}
	s.entries[idx] = entry
	s.publish(models.HistoryEvent{Type: models.EventUpdated, Entry: &entry})
	return true
}

func (s *HistoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.publish(models.HistoryEvent{Type: models.EventCleared})
}

func (s *HistoryStore) Get(id string) (models.ScanEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.entries[idx], true
	}
	return models.ScanEntry{}, false
}

// List returns a snapshot of the history, newest first
func (s *HistoryStore) List() []models.ScanEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ScanEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe returns a channel receiving every history event in order, and a
// function that cancels the subscription. Events are dropped for a subscriber
// whose buffer is full.
func (s *HistoryStore) Subscribe(buffer int) (<-chan models.HistoryEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.HistoryEvent, buffer)
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *HistoryStore) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// publish must be called with the write lock held
func (s *HistoryStore) publish(event models.HistoryEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
