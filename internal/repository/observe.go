package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/survival-api/internal/metrics"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/rs/zerolog"
)

// observedStore decorates a RecordStore with a per-call timeout, Prometheus
// metrics and slow-call logging. Every backend is wrapped in one.
type observedStore struct {
	next          RecordStore
	backend       string
	timeout       time.Duration
	slowThreshold time.Duration
}

// Observe wraps store. A zero timeout leaves calls unbounded; a zero
// slowThreshold disables slow-call warnings.
func Observe(store RecordStore, backend string, timeout, slowThreshold time.Duration) RecordStore {
	return &observedStore{
		next:          store,
		backend:       backend,
		timeout:       timeout,
		slowThreshold: slowThreshold,
	}
}

// run executes op under the store timeout and records its outcome.
func (s *observedStore) run(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := op(ctx)
	elapsed := time.Since(start)

	metrics.StoreOperationDuration.WithLabelValues(s.backend, operation).Observe(elapsed.Seconds())

	if s.slowThreshold > 0 && elapsed > s.slowThreshold {
		zerolog.Ctx(ctx).Warn().
			Str("backend", s.backend).
			Str("store_operation", operation).
			Dur("duration", elapsed).
			Msg("slow store operation")
	}

	if err == nil || errors.Is(err, ErrRecordNotFound) {
		return err
	}

	metrics.StoreOperationErrors.WithLabelValues(s.backend, operation).Inc()

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s timed out after %s: %w", s.backend, operation, s.timeout, err)
	}
	return err
}

func (s *observedStore) Put(ctx context.Context, record model.PredictionRecord) error {
	return s.run(ctx, "put", func(ctx context.Context) error {
		return s.next.Put(ctx, record)
	})
}

func (s *observedStore) Get(ctx context.Context, passengerID string) (model.PredictionRecord, error) {
	var record model.PredictionRecord
	err := s.run(ctx, "get", func(ctx context.Context) error {
		var err error
		record, err = s.next.Get(ctx, passengerID)
		return err
	})
	return record, err
}

func (s *observedStore) Scan(ctx context.Context) ([]model.PredictionRecord, error) {
	var records []model.PredictionRecord
	err := s.run(ctx, "scan", func(ctx context.Context) error {
		var err error
		records, err = s.next.Scan(ctx)
		return err
	})
	return records, err
}

func (s *observedStore) Delete(ctx context.Context, passengerID string) error {
	return s.run(ctx, "delete", func(ctx context.Context) error {
		return s.next.Delete(ctx, passengerID)
	})
}

// Ping reports nil for backends that cannot be pinged.
func (s *observedStore) Ping(ctx context.Context) error {
	pinger, ok := s.next.(Pinger)
	if !ok {
		return nil
	}
	return s.run(ctx, "ping", pinger.Ping)
}

func (s *observedStore) Close() error {
	return s.next.Close()
}
