package domain

import (
	"context"
	"time"
)

// MeasurementRepository is the persistence contract consumed by the
// application services. Implementations guarantee unique, monotonically
// assigned ids and enforce the numeric range invariants a second time at
// the storage boundary.
type MeasurementRepository interface {
	Insert(ctx context.Context, patch MeasurementPatch) (Measurement, error)
	Get(ctx context.Context, id int64) (Measurement, error)
	List(ctx context.Context, limit int) ([]Measurement, error)
	Update(ctx context.Context, id int64, patch MeasurementPatch) (Measurement, error)
	Delete(ctx context.Context, id int64) error
	ListForAggregation(ctx context.Context, since *time.Time) ([]Measurement, error)
}

// MeasurementService describes the write/read behaviour exposed to
// transport layers. Raw attribute maps are validated before any store
// mutation is attempted.
type MeasurementService interface {
	Create(ctx context.Context, attrs map[string]any) (Measurement, error)
	Get(ctx context.Context, id int64) (Measurement, error)
	List(ctx context.Context, limit int) ([]Measurement, error)
	Update(ctx context.Context, id int64, attrs map[string]any) (Measurement, error)
	Delete(ctx context.Context, id int64) error
}

// StatsService computes time-bucketed descriptive statistics.
type StatsService interface {
	Summary(ctx context.Context, granularity string, limit int) (StatsSummary, error)
}
