package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bp-tracker-service/internal/domain"
	"bp-tracker-service/internal/metrics"
)

const (
	createTableStatement = `
CREATE TABLE IF NOT EXISTS measurements (
    id BIGSERIAL PRIMARY KEY,
    systolic SMALLINT NOT NULL CHECK (systolic BETWEEN 40 AND 260),
    diastolic SMALLINT NOT NULL CHECK (diastolic BETWEEN 20 AND 200),
    pulse SMALLINT CHECK (pulse BETWEEN 20 AND 250),
    measured_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	measuredAtIndexStatement = `
CREATE INDEX IF NOT EXISTS idx_measurements_measured_at
ON measurements (measured_at DESC)`

	selectColumns = "id, systolic, diastolic, pulse, measured_at, created_at, updated_at"
)

// Connect opens a pgx-backed pool and verifies connectivity. A failure
// here is fatal to startup.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres: DSN is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// Repository implements the measurement repository contract backed by
// Postgres. Every mutation is a single statement; atomicity comes from the
// engine, not from application-level transactions.
type Repository struct {
	db *sql.DB
}

// New creates a repository on top of an open database handle.
func New(db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("postgres repository: db handle is required")
	}
	return &Repository{db: db}, nil
}

// EnsureSchema creates the measurements table and its index when missing.
// The CHECK constraints repeat the validator ranges at the storage
// boundary.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createTableStatement, measuredAtIndexStatement} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres repository: ensure schema: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Insert stores a new measurement and returns the persisted row.
func (r *Repository) Insert(ctx context.Context, patch domain.MeasurementPatch) (domain.Measurement, error) {
	defer metrics.ObserveQuery("insert", time.Now())

	systolic, _ := patch.Systolic.Get()
	diastolic, _ := patch.Diastolic.Get()
	measuredAt, _ := patch.MeasuredAt.Get()

	row := r.db.QueryRowContext(ctx,
		"INSERT INTO measurements (systolic, diastolic, pulse, measured_at) VALUES ($1, $2, $3, $4) RETURNING "+selectColumns,
		systolic, diastolic, pulseArg(patch.Pulse), measuredAt,
	)

	m, err := scanMeasurement(row)
	if err != nil {
		return domain.Measurement{}, fmt.Errorf("postgres repository: insert: %w", err)
	}
	return m, nil
}

// Get returns the measurement with the provided id.
func (r *Repository) Get(ctx context.Context, id int64) (domain.Measurement, error) {
	defer metrics.ObserveQuery("get", time.Now())

	row := r.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM measurements WHERE id = $1", id)

	m, err := scanMeasurement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Measurement{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Measurement{}, fmt.Errorf("postgres repository: get: %w", err)
	}
	return m, nil
}

// List returns up to limit measurements ordered by measuredAt descending.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.Measurement, error) {
	defer metrics.ObserveQuery("list", time.Now())

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM measurements ORDER BY measured_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("postgres repository: list: %w", err)
	}
	defer rows.Close()

	return collectRows(rows, "list")
}

// Update applies the supplied patch fields and refreshes updated_at.
func (r *Repository) Update(ctx context.Context, id int64, patch domain.MeasurementPatch) (domain.Measurement, error) {
	defer metrics.ObserveQuery("update", time.Now())

	set := make([]string, 0, 5)
	args := make([]any, 0, 5)
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if v, ok := patch.Systolic.Get(); ok {
		set = append(set, "systolic = "+next(v))
	}
	if v, ok := patch.Diastolic.Get(); ok {
		set = append(set, "diastolic = "+next(v))
	}
	if patch.Pulse.Present() {
		set = append(set, "pulse = "+next(pulseArg(patch.Pulse)))
	}
	if v, ok := patch.MeasuredAt.Get(); ok {
		set = append(set, "measured_at = "+next(v))
	}
	set = append(set, "updated_at = now()")

	query := fmt.Sprintf("UPDATE measurements SET %s WHERE id = %s RETURNING %s",
		strings.Join(set, ", "), next(id), selectColumns)

	m, err := scanMeasurement(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Measurement{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Measurement{}, fmt.Errorf("postgres repository: update: %w", err)
	}
	return m, nil
}

// Delete removes the measurement with the provided id. Deleting an absent
// id reports not-found, so a second delete fails the same way.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	defer metrics.ObserveQuery("delete", time.Now())

	result, err := r.db.ExecContext(ctx, "DELETE FROM measurements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres repository: delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres repository: delete: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListForAggregation returns all measurements, optionally filtered to
// those measured at or after since, ordered by measuredAt ascending.
func (r *Repository) ListForAggregation(ctx context.Context, since *time.Time) ([]domain.Measurement, error) {
	defer metrics.ObserveQuery("list_for_aggregation", time.Now())

	query := "SELECT " + selectColumns + " FROM measurements ORDER BY measured_at ASC"
	args := []any{}
	if since != nil {
		query = "SELECT " + selectColumns + " FROM measurements WHERE measured_at >= $1 ORDER BY measured_at ASC"
		args = append(args, *since)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres repository: list for aggregation: %w", err)
	}
	defer rows.Close()

	return collectRows(rows, "list for aggregation")
}

func collectRows(rows *sql.Rows, op string) ([]domain.Measurement, error) {
	result := make([]domain.Measurement, 0)
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres repository: %s scan: %w", op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres repository: %s rows: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (domain.Measurement, error) {
	var m domain.Measurement
	var pulse sql.NullInt64

	err := row.Scan(&m.ID, &m.Systolic, &m.Diastolic, &pulse,
		&m.MeasuredAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Measurement{}, err
	}

	if pulse.Valid {
		value := int(pulse.Int64)
		m.Pulse = &value
	}
	m.MeasuredAt = m.MeasuredAt.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

func pulseArg(pulse domain.Optional[int]) any {
	if v, ok := pulse.Get(); ok {
		return v
	}
	return nil
}

var _ domain.MeasurementRepository = (*Repository)(nil)
