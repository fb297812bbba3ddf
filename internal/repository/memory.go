package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/deppfellow/survival-api/internal/model"
)

// MemoryStore keeps records in process memory, in insertion order.
// Useful for local runs and tests; contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.PredictionRecord
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.PredictionRecord)}
}

func (s *MemoryStore) Put(ctx context.Context, record model.PredictionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.PassengerID]; !exists {
		s.order = append(s.order, record.PassengerID)
	}
	s.records[record.PassengerID] = record
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, passengerID string) (model.PredictionRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.PredictionRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[passengerID]
	if !ok {
		return model.PredictionRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (s *MemoryStore) Scan(ctx context.Context) ([]model.PredictionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.PredictionRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}
	return records, nil
}

func (s *MemoryStore) Delete(ctx context.Context, passengerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[passengerID]; !ok {
		return nil
	}
	delete(s.records, passengerID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == passengerID })
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}
