// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// maxInsertBatch caps one transaction's row count so bulk backfills keep
// memory and lock time bounded.
const maxInsertBatch = 1000

// PostgresStore persists readings and alerts in Postgres.
type PostgresStore struct {
	db        *sql.DB
	batchSize int
}

var (
	_ ReadingRepository = (*PostgresStore)(nil)
	_ AlertRepository   = (*PostgresStore)(nil)
)

// NewPostgresStore opens and pings the database. batchSize <= 0 or above the
// cap falls back to the cap.
func NewPostgresStore(dsn string, batchSize int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if batchSize <= 0 || batchSize > maxInsertBatch {
		batchSize = maxInsertBatch
	}
	return &PostgresStore{db: db, batchSize: batchSize}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// Init creates the schema when missing.
func (s *PostgresStore) Init(ctx context.Context) error {
	schema := `
        CREATE TABLE IF NOT EXISTS readings (
            id            BIGSERIAL PRIMARY KEY,
            device_id     TEXT NOT NULL,
            ts            TIMESTAMPTZ NOT NULL,
            voltage       DOUBLE PRECISION,
            current       DOUBLE PRECISION,
            temperature   DOUBLE PRECISION,
            power         DOUBLE PRECISION,
            battery_level DOUBLE PRECISION,
            status        TEXT NOT NULL,
            is_anomaly    BOOLEAN NOT NULL DEFAULT FALSE
        );
        CREATE INDEX IF NOT EXISTS idx_readings_device_ts ON readings (device_id, ts);

        CREATE TABLE IF NOT EXISTS alerts (
            id              UUID PRIMARY KEY,
            device_id       TEXT NOT NULL,
            ts              TIMESTAMPTZ NOT NULL,
            type            TEXT NOT NULL,
            severity        TEXT NOT NULL,
            message         TEXT NOT NULL,
            value           DOUBLE PRECISION NOT NULL,
            previous_value  DOUBLE PRECISION,
            threshold       TEXT,
            action_required BOOLEAN NOT NULL DEFAULT FALSE,
            resolved        BOOLEAN NOT NULL DEFAULT FALSE
        );
        CREATE INDEX IF NOT EXISTS idx_alerts_device_type_ts ON alerts (device_id, type, ts);
    `
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, r data.Reading) error {
	query := `
        INSERT INTO readings (device_id, ts, voltage, current, temperature, power, battery_level, status, is_anomaly)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := s.db.ExecContext(ctx, query,
		r.DeviceID, r.Timestamp,
		nullable(r.Voltage), nullable(r.Current), nullable(r.Temperature),
		nullable(r.Power), nullable(r.BatteryLevel),
		string(r.Status), r.IsAnomaly,
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}
	return nil
}

// InsertBatch writes readings in transactions of at most batchSize rows.
func (s *PostgresStore) InsertBatch(ctx context.Context, readings []data.Reading) error {
	for start := 0; start < len(readings); start += s.batchSize {
		end := start + s.batchSize
		if end > len(readings) {
			end = len(readings)
		}
		if err := s.insertChunk(ctx, readings[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) insertChunk(ctx context.Context, readings []data.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO readings (device_id, ts, voltage, current, temperature, power, battery_level, status, is_anomaly)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `)
	if err != nil {
		return fmt.Errorf("preparing batch insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx,
			r.DeviceID, r.Timestamp,
			nullable(r.Voltage), nullable(r.Current), nullable(r.Temperature),
			nullable(r.Power), nullable(r.BatteryLevel),
			string(r.Status), r.IsAnomaly,
		); err != nil {
			return fmt.Errorf("inserting reading batch row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) GetLatest(ctx context.Context, deviceID string) (*data.Reading, error) {
	query := `
        SELECT device_id, ts, voltage, current, temperature, power, battery_level, status, is_anomaly
        FROM readings
        WHERE device_id = $1
        ORDER BY ts DESC
        LIMIT 1
    `
	row := s.db.QueryRowContext(ctx, query, deviceID)
	r, err := scanReading(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest reading: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) GetRange(ctx context.Context, deviceID string, start, end time.Time) ([]data.Reading, error) {
	query := `
        SELECT device_id, ts, voltage, current, temperature, power, battery_level, status, is_anomaly
        FROM readings
        WHERE device_id = $1 AND ts >= $2 AND ts <= $3
        ORDER BY ts ASC
    `
	rows, err := s.db.QueryContext(ctx, query, deviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying reading range: %w", err)
	}
	defer rows.Close()

	var readings []data.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, *r)
	}
	return readings, rows.Err()
}

func (s *PostgresStore) DeviceIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT device_id FROM readings ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("querying device ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning device id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) InsertAlert(ctx context.Context, a data.Alert) error {
	query := `
        INSERT INTO alerts (id, device_id, ts, type, severity, message, value, previous_value, threshold, action_required, resolved)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.DeviceID, a.Timestamp,
		string(a.Type), string(a.Severity), a.Message,
		a.Value, nullable(a.PreviousValue), a.Threshold, a.ActionRequired, a.Resolved,
	)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]data.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT id, device_id, ts, type, severity, message, value, previous_value, threshold, action_required, resolved
        FROM alerts
        ORDER BY ts DESC
        LIMIT $1
    `
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []data.Alert
	for rows.Next() {
		var (
			a        data.Alert
			id       string
			prev     sql.NullFloat64
			thr      sql.NullString
			typ, sev string
		)
		if err := rows.Scan(&id, &a.DeviceID, &a.Timestamp, &typ, &sev, &a.Message,
			&a.Value, &prev, &thr, &a.ActionRequired, &a.Resolved); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		a.ID, _ = uuid.Parse(id)
		a.Type = data.AlertType(typ)
		a.Severity = data.Severity(sev)
		if prev.Valid {
			a.PreviousValue = &prev.Float64
		}
		a.Threshold = thr.String
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *PostgresStore) HasRecentUnresolved(ctx context.Context, deviceID string, t data.AlertType, window time.Duration) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM alerts
            WHERE device_id = $1 AND type = $2 AND resolved = FALSE AND ts >= $3
        )
    `
	var exists bool
	err := s.db.QueryRowContext(ctx, query, deviceID, string(t), time.Now().Add(-window)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying recent alerts: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReading(row rowScanner) (*data.Reading, error) {
	var (
		r                                data.Reading
		voltage, current, temp, pw, batt sql.NullFloat64
		status                           string
	)
	if err := row.Scan(&r.DeviceID, &r.Timestamp, &voltage, &current, &temp, &pw, &batt, &status, &r.IsAnomaly); err != nil {
		return nil, err
	}
	r.Status = data.Status(status)
	r.Voltage = fromNull(voltage)
	r.Current = fromNull(current)
	r.Temperature = fromNull(temp)
	r.Power = fromNull(pw)
	r.BatteryLevel = fromNull(batt)
	return &r, nil
}

// nullable converts an optional float to a driver-friendly value.
func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
