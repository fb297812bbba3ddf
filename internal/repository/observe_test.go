package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/survival-api/internal/model"
	"github.com/rs/zerolog"
)

// blockingStore waits for the context to end on every call.
type blockingStore struct {
	MemoryStore
}

func (s *blockingStore) Put(ctx context.Context, _ model.PredictionRecord) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestObserveAppliesTimeout(t *testing.T) {
	store := Observe(&blockingStore{}, "blocking", 10*time.Millisecond, 0)

	err := store.Put(context.Background(), testRecord("1", 0))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Put = %v, want DeadlineExceeded", err)
	}
}

func TestObservePassesResultsThrough(t *testing.T) {
	ctx := zerolog.Nop().WithContext(context.Background())
	store := Observe(NewMemoryStore(), "memory", time.Second, time.Nanosecond)

	runStoreContract(t, store)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get missing = %v, want ErrRecordNotFound", err)
	}

	pinger, ok := store.(Pinger)
	if !ok {
		t.Fatal("observed store does not expose Ping")
	}
	if err := pinger.Ping(ctx); err != nil {
		t.Errorf("Ping = %v", err)
	}
}

func TestObservePingWithoutPinger(t *testing.T) {
	store := Observe(failingCloser{}, "plain", time.Second, 0)

	if err := store.(Pinger).Ping(context.Background()); err != nil {
		t.Errorf("Ping = %v, want nil for a store that cannot ping", err)
	}
	if err := store.Close(); err == nil {
		t.Error("Close did not reach the wrapped store")
	}
}

type failingCloser struct{}

func (failingCloser) Put(context.Context, model.PredictionRecord) error { return nil }
func (failingCloser) Get(context.Context, string) (model.PredictionRecord, error) {
	return model.PredictionRecord{}, ErrRecordNotFound
}
func (failingCloser) Scan(context.Context) ([]model.PredictionRecord, error) { return nil, nil }
func (failingCloser) Delete(context.Context, string) error                   { return nil }
func (failingCloser) Close() error                                           { return errors.New("close failed") }
