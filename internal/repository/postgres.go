package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// pgxQuerier is the subset of *pgxpool.Pool used by PostgresStore.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore keeps records in the survival_predictions table.
//
// Age and fare are NUMERIC columns. They travel as text in both directions
// so no precision is lost to float conversion. The pool is owned by
// database.Database; Close does not close it.
type PostgresStore struct {
	pool pgxQuerier
}

func NewPostgresStore(pool pgxQuerier) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const pgSelectColumns = `
	passenger_id, survival_prediction, age::text, fare::text,
	pclass, parch, sibsp, sex_male, embarked_q, embarked_s`

func (s *PostgresStore) Put(ctx context.Context, record model.PredictionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO survival_predictions (
			passenger_id, survival_prediction, age, fare,
			pclass, parch, sibsp, sex_male, embarked_q, embarked_s
		)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (passenger_id) DO UPDATE SET
			survival_prediction = EXCLUDED.survival_prediction,
			age = EXCLUDED.age,
			fare = EXCLUDED.fare,
			pclass = EXCLUDED.pclass,
			parch = EXCLUDED.parch,
			sibsp = EXCLUDED.sibsp,
			sex_male = EXCLUDED.sex_male,
			embarked_q = EXCLUDED.embarked_q,
			embarked_s = EXCLUDED.embarked_s,
			updated_at = now()`,
		record.PassengerID,
		record.SurvivalPrediction,
		record.Age.String(),
		record.Fare.String(),
		record.Pclass,
		record.Parch,
		record.SibSp,
		record.SexMale,
		record.EmbarkedQ,
		record.EmbarkedS,
	)
	if err != nil {
		return fmt.Errorf("failed to put prediction %s: %w", record.PassengerID, sqlerr.HandleError(err))
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, passengerID string) (model.PredictionRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgSelectColumns+`
		FROM survival_predictions
		WHERE passenger_id = $1`, passengerID)

	record, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PredictionRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("failed to get prediction %s: %w", passengerID, sqlerr.HandleError(err))
	}
	return record, nil
}

func (s *PostgresStore) Scan(ctx context.Context) ([]model.PredictionRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+pgSelectColumns+`
		FROM survival_predictions
		ORDER BY created_at, passenger_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan predictions: %w", sqlerr.HandleError(err))
	}
	defer rows.Close()

	records := make([]model.PredictionRecord, 0)
	for rows.Next() {
		record, err := scanPgRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read prediction row: %w", sqlerr.HandleError(err))
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan predictions: %w", sqlerr.HandleError(err))
	}
	return records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, passengerID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM survival_predictions WHERE passenger_id = $1`, passengerID); err != nil {
		return fmt.Errorf("failed to delete prediction %s: %w", passengerID, sqlerr.HandleError(err))
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	return nil
}

func scanPgRecord(row pgx.Row) (model.PredictionRecord, error) {
	var (
		record    model.PredictionRecord
		age, fare string
	)
	err := row.Scan(
		&record.PassengerID,
		&record.SurvivalPrediction,
		&age,
		&fare,
		&record.Pclass,
		&record.Parch,
		&record.SibSp,
		&record.SexMale,
		&record.EmbarkedQ,
		&record.EmbarkedS,
	)
	if err != nil {
		return model.PredictionRecord{}, err
	}

	if record.Age, err = decimal.NewFromString(age); err != nil {
		return model.PredictionRecord{}, fmt.Errorf("invalid age %q: %w", age, err)
	}
	if record.Fare, err = decimal.NewFromString(fare); err != nil {
		return model.PredictionRecord{}, fmt.Errorf("invalid fare %q: %w", fare, err)
	}
	return record, nil
}
