package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/survival-api/internal/model"
	"github.com/shopspring/decimal"
)

func testRecord(id string, prediction int) model.PredictionRecord {
	return model.PredictionRecord{
		PassengerID:        id,
		SurvivalPrediction: prediction,
		Features: model.Features{
			Age:       decimal.RequireFromString("22.5"),
			Fare:      decimal.RequireFromString("7.25"),
			Pclass:    3,
			Parch:     2,
			SibSp:     1,
			SexMale:   1,
			EmbarkedQ: 0,
			EmbarkedS: 1,
		},
	}
}

func assertSameRecord(t *testing.T, got, want model.PredictionRecord) {
	t.Helper()

	if got.PassengerID != want.PassengerID ||
		got.SurvivalPrediction != want.SurvivalPrediction ||
		!got.Age.Equal(want.Age) ||
		!got.Fare.Equal(want.Fare) ||
		got.Pclass != want.Pclass ||
		got.Parch != want.Parch ||
		got.SibSp != want.SibSp ||
		got.SexMale != want.SexMale ||
		got.EmbarkedQ != want.EmbarkedQ ||
		got.EmbarkedS != want.EmbarkedS {
		t.Errorf("record = %+v, want %+v", got, want)
	}
}

// runStoreContract exercises the RecordStore behaviour every backend shares.
// The store must start empty.
func runStoreContract(t *testing.T, store RecordStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		records, err := store.Scan(ctx)
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("Scan on empty store = %#v, want empty non-nil slice", records)
		}

		if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("Get missing = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		first := testRecord("1001", 0)
		if err := store.Put(ctx, first); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := store.Get(ctx, "1001")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		assertSameRecord(t, got, first)
	})

	t.Run("overwrite", func(t *testing.T) {
		updated := testRecord("1001", 1)
		updated.Fare = decimal.RequireFromString("71.2833")
		if err := store.Put(ctx, updated); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := store.Get(ctx, "1001")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		assertSameRecord(t, got, updated)
	})

	t.Run("scan", func(t *testing.T) {
		if err := store.Put(ctx, testRecord("1002", 1)); err != nil {
			t.Fatalf("Put: %v", err)
		}

		records, err := store.Scan(ctx)
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Scan returned %d records, want 2", len(records))
		}
		if records[0].PassengerID != "1001" || records[1].PassengerID != "1002" {
			t.Errorf("Scan order = %s, %s", records[0].PassengerID, records[1].PassengerID)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.Delete(ctx, "1001"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.Get(ctx, "1001"); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("Get after delete = %v, want ErrRecordNotFound", err)
		}
		if err := store.Delete(ctx, "1001"); err != nil {
			t.Errorf("second Delete = %v, want nil", err)
		}
		if err := store.Delete(ctx, "never-stored"); err != nil {
			t.Errorf("Delete unknown = %v, want nil", err)
		}

		records, err := store.Scan(ctx)
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if len(records) != 1 || records[0].PassengerID != "1002" {
			t.Errorf("Scan after delete = %+v", records)
		}
	})

	if pinger, ok := store.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			t.Errorf("Ping: %v", err)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMemoryStore().Put(ctx, testRecord("1", 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("Put = %v, want context.Canceled", err)
	}
}
