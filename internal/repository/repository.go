// Package repository handles all interactions with the record store.
//
// It defines the RecordStore contract used by the service layer and one
// implementation per supported backend (memory, PostgreSQL, Redis, SQLite
// and DynamoDB). Backend specifics like SQL, key layouts and attribute
// encodings stay in this package.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/survival-api/internal/model"
)

// ErrRecordNotFound is returned by Get when no record has the requested id.
var ErrRecordNotFound = errors.New("record not found")

// RecordStore persists prediction records keyed by passenger id.
//
// Put overwrites an existing record with the same id. Delete of an unknown
// id is not an error. Scan returns every record in the backend's native
// order and never returns a nil slice on success.
type RecordStore interface {
	Put(ctx context.Context, record model.PredictionRecord) error
	Get(ctx context.Context, passengerID string) (model.PredictionRecord, error)
	Scan(ctx context.Context) ([]model.PredictionRecord, error)
	Delete(ctx context.Context, passengerID string) error
	Close() error
}

// Pinger is implemented by stores that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
