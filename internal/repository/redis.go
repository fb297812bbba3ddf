package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/deppfellow/survival-api/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps every record in one Redis hash: field = passenger id,
// value = the record as JSON. Decimals are encoded as strings.
//
// The client is owned by the server container; Close does not close it.
type RedisStore struct {
	client  redis.Cmdable
	hashKey string
}

func NewRedisStore(client redis.Cmdable, hashKey string) *RedisStore {
	return &RedisStore{client: client, hashKey: hashKey}
}

func (s *RedisStore) Put(ctx context.Context, record model.PredictionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode prediction %s: %w", record.PassengerID, err)
	}

	if err := s.client.HSet(ctx, s.hashKey, record.PassengerID, payload).Err(); err != nil {
		return fmt.Errorf("failed to put prediction %s: %w", record.PassengerID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, passengerID string) (model.PredictionRecord, error) {
	payload, err := s.client.HGet(ctx, s.hashKey, passengerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.PredictionRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("failed to get prediction %s: %w", passengerID, err)
	}

	var record model.PredictionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return model.PredictionRecord{}, fmt.Errorf("failed to decode prediction %s: %w", passengerID, err)
	}
	return record, nil
}

// Scan reads the whole hash. Hash order is unspecified, so records are
// sorted by passenger id to keep listings stable between calls.
func (s *RedisStore) Scan(ctx context.Context) ([]model.PredictionRecord, error) {
	entries, err := s.client.HGetAll(ctx, s.hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan predictions: %w", err)
	}

	records := make([]model.PredictionRecord, 0, len(entries))
	for id, payload := range entries {
		var record model.PredictionRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to decode prediction %s: %w", id, err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].PassengerID < records[j].PassengerID
	})
	return records, nil
}

func (s *RedisStore) Delete(ctx context.Context, passengerID string) error {
	if err := s.client.HDel(ctx, s.hashKey, passengerID).Err(); err != nil {
		return fmt.Errorf("failed to delete prediction %s: %w", passengerID, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return nil
}
