package repository

import (
    "context"
    "sync"

    "github.com/iliyamo/gear-reservation/internal/model"
)

// MemoryStore keeps records in process memory.  It is used by tests and by
// the "memory" store driver for local runs.
type MemoryStore struct {
    mu      sync.RWMutex
    records []model.ReservationRecord
}

// NewMemoryStore returns a store seeded with a copy of records.
func NewMemoryStore(records ...model.ReservationRecord) *MemoryStore {
    return &MemoryStore{records: cloneRecords(records)}
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]model.ReservationRecord, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return cloneRecords(s.records), nil
}

func (s *MemoryStore) AppendRows(ctx context.Context, rows []model.ReservationRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.records = append(s.records, cloneRecords(rows)...)
    return nil
}

func (s *MemoryStore) UpdateRows(ctx context.Context, updates []model.RowUpdate) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    next, err := applyUpdates(s.records, updates)
    if err != nil {
        return err
    }
    s.records = next
    return nil
}
