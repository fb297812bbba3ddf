package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deppfellow/survival-api/internal/model"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLiteStore keeps records in a local SQLite file. Age and fare are TEXT
// columns holding the exact decimal representation.
type SQLiteStore struct {
	db         *sql.DB
	putStmt    *sql.Stmt
	getStmt    *sql.Stmt
	scanStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// OpenSQLiteStore opens (and creates if needed) the database at dbPath.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db path: %w", err)
	}

	// DSN notes:
	// - _busy_timeout sets a lock wait in milliseconds
	// - _journal_mode=WAL lets readers proceed while a write is in flight
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", filepath.Clean(dbPath))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	statements := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&store.putStmt, `
			INSERT INTO survival_predictions (
				passenger_id, survival_prediction, age, fare,
				pclass, parch, sibsp, sex_male, embarked_q, embarked_s
			)
			VALUES (?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT (passenger_id) DO UPDATE SET
				survival_prediction = excluded.survival_prediction,
				age = excluded.age,
				fare = excluded.fare,
				pclass = excluded.pclass,
				parch = excluded.parch,
				sibsp = excluded.sibsp,
				sex_male = excluded.sex_male,
				embarked_q = excluded.embarked_q,
				embarked_s = excluded.embarked_s`},
		{&store.getStmt, `SELECT ` + sqliteColumns + ` FROM survival_predictions WHERE passenger_id = ?`},
		{&store.scanStmt, `SELECT ` + sqliteColumns + ` FROM survival_predictions ORDER BY rowid`},
		{&store.deleteStmt, `DELETE FROM survival_predictions WHERE passenger_id = ?`},
	}

	for _, st := range statements {
		prepared, err := db.Prepare(st.query)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to prepare statement: %w", err)
		}
		*st.dst = prepared
	}

	return store, nil
}

const sqliteColumns = `passenger_id, survival_prediction, age, fare, pclass, parch, sibsp, sex_male, embarked_q, embarked_s`

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS survival_predictions (
			passenger_id        TEXT PRIMARY KEY,
			survival_prediction INTEGER NOT NULL,
			age                 TEXT NOT NULL,
			fare                TEXT NOT NULL,
			pclass              INTEGER NOT NULL,
			parch               INTEGER NOT NULL,
			sibsp               INTEGER NOT NULL,
			sex_male            INTEGER NOT NULL,
			embarked_q          INTEGER NOT NULL,
			embarked_s          INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, record model.PredictionRecord) error {
	_, err := s.putStmt.ExecContext(ctx,
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
		return fmt.Errorf("failed to put prediction %s: %w", record.PassengerID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, passengerID string) (model.PredictionRecord, error) {
	record, err := scanSQLiteRecord(s.getStmt.QueryRowContext(ctx, passengerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.PredictionRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("failed to get prediction %s: %w", passengerID, err)
	}
	return record, nil
}

func (s *SQLiteStore) Scan(ctx context.Context) ([]model.PredictionRecord, error) {
	rows, err := s.scanStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan predictions: %w", err)
	}
	defer rows.Close()

	records := make([]model.PredictionRecord, 0)
	for rows.Next() {
		record, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read prediction row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan predictions: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, passengerID string) error {
	if _, err := s.deleteStmt.ExecContext(ctx, passengerID); err != nil {
		return fmt.Errorf("failed to delete prediction %s: %w", passengerID, err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.putStmt, s.getStmt, s.scanStmt, s.deleteStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (model.PredictionRecord, error) {
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
