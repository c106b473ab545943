// internal/storage/memory.go
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

const defaultMemoryCap = 10000 // readings kept per device

// MemoryStore is an in-process ring buffer per device, the default backend
// for development and tests. All methods copy on the way out so callers can
// never race the internal slices.
type MemoryStore struct {
	mu       sync.RWMutex
	readings map[string][]data.Reading
	alerts   []data.Alert
	capacity int
}

var (
	_ ReadingRepository = (*MemoryStore)(nil)
	_ AlertRepository   = (*MemoryStore)(nil)
)

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultMemoryCap
	}
	return &MemoryStore{
		readings: make(map[string][]data.Reading),
		capacity: capacity,
	}
}

func (s *MemoryStore) Insert(_ context.Context, r data.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(r)
	return nil
}

func (s *MemoryStore) InsertBatch(_ context.Context, readings []data.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range readings {
		s.insertLocked(r)
	}
	return nil
}

func (s *MemoryStore) insertLocked(r data.Reading) {
	buf := s.readings[r.DeviceID]
	if len(buf) >= s.capacity {
		// Drop the oldest to bound per-device memory.
		buf = buf[1:]
	}
	s.readings[r.DeviceID] = append(buf, r)
}

func (s *MemoryStore) GetLatest(_ context.Context, deviceID string) (*data.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.readings[deviceID]
	if len(buf) == 0 {
		return nil, nil
	}
	latest := buf[0]
	for _, r := range buf[1:] {
		if !r.Timestamp.Before(latest.Timestamp) {
			latest = r
		}
	}
	return &latest, nil
}

func (s *MemoryStore) GetRange(_ context.Context, deviceID string, start, end time.Time) ([]data.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []data.Reading
	for _, r := range s.readings[deviceID] {
		if r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		result = append(result, r)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

func (s *MemoryStore) DeviceIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.readings))
	for id := range s.readings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// --- AlertRepository ---

func (s *MemoryStore) InsertAlert(_ context.Context, a data.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]data.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]data.Alert, len(s.alerts))
	copy(sorted, s.alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (s *MemoryStore) HasRecentUnresolved(_ context.Context, deviceID string, t data.AlertType, window time.Duration) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-window)
	for _, a := range s.alerts {
		if a.DeviceID == deviceID && a.Type == t && !a.Resolved && a.Timestamp.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}
