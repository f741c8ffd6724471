package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bp-tracker-service/internal/domain"
)

// Repository stores measurements in memory and satisfies the repository
// contract. It backs tests and database-less development.
type Repository struct {
	mu           sync.RWMutex
	nextID       int64
	measurements map[int64]domain.Measurement
	clock        func() time.Time
}

// Option customises the repository.
type Option func(*Repository)

// WithClock replaces the time source used for createdAt/updatedAt.
func WithClock(clock func() time.Time) Option {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// New creates an empty in-memory repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		nextID:       1,
		measurements: make(map[int64]domain.Measurement),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores a new measurement, assigning the next monotonic id.
func (r *Repository) Insert(_ context.Context, patch domain.MeasurementPatch) (domain.Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock().UTC()
	m := domain.Measurement{
		ID:         r.nextID,
		MeasuredAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyPatch(&m, patch)
	if err := checkRanges(m); err != nil {
		return domain.Measurement{}, err
	}

	r.nextID++
	r.measurements[m.ID] = m
	return m, nil
}

// Get returns the measurement with the provided id.
func (r *Repository) Get(_ context.Context, id int64) (domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.measurements[id]
	if !ok {
		return domain.Measurement{}, domain.ErrNotFound
	}
	return m, nil
}

// List returns up to limit measurements ordered by measuredAt descending.
func (r *Repository) List(_ context.Context, limit int) ([]domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.collect(nil)
	sort.Slice(result, func(i, j int) bool {
		return result[i].MeasuredAt.After(result[j].MeasuredAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Update applies the supplied patch fields to an existing measurement and
// refreshes updatedAt.
func (r *Repository) Update(_ context.Context, id int64, patch domain.MeasurementPatch) (domain.Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.measurements[id]
	if !ok {
		return domain.Measurement{}, domain.ErrNotFound
	}

	applyPatch(&m, patch)
	if err := checkRanges(m); err != nil {
		return domain.Measurement{}, err
	}
	m.UpdatedAt = r.clock().UTC()
	r.measurements[id] = m
	return m, nil
}

// Delete removes the measurement with the provided id.
func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.measurements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.measurements, id)
	return nil
}

// ListForAggregation returns all measurements, optionally filtered to
// those measured at or after since, ordered by measuredAt ascending.
func (r *Repository) ListForAggregation(_ context.Context, since *time.Time) ([]domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.collect(since)
	sort.Slice(result, func(i, j int) bool {
		return result[i].MeasuredAt.Before(result[j].MeasuredAt)
	})
	return result, nil
}

func (r *Repository) collect(since *time.Time) []domain.Measurement {
	result := make([]domain.Measurement, 0, len(r.measurements))
	for _, m := range r.measurements {
		if since != nil && m.MeasuredAt.Before(*since) {
			continue
		}
		if m.Pulse != nil {
			pulse := *m.Pulse
			m.Pulse = &pulse
		}
		result = append(result, m)
	}
	return result
}

func applyPatch(m *domain.Measurement, patch domain.MeasurementPatch) {
	if v, ok := patch.Systolic.Get(); ok {
		m.Systolic = v
	}
	if v, ok := patch.Diastolic.Get(); ok {
		m.Diastolic = v
	}
	if patch.Pulse.Present() {
		if v, ok := patch.Pulse.Get(); ok {
			pulse := v
			m.Pulse = &pulse
		} else {
			m.Pulse = nil
		}
	}
	if v, ok := patch.MeasuredAt.Get(); ok {
		m.MeasuredAt = v.UTC()
	}
}

// checkRanges mirrors the database CHECK constraints.
func checkRanges(m domain.Measurement) error {
	if m.Systolic < domain.SystolicMin || m.Systolic > domain.SystolicMax {
		return fmt.Errorf("memory repository: systolic %d out of range", m.Systolic)
	}
	if m.Diastolic < domain.DiastolicMin || m.Diastolic > domain.DiastolicMax {
		return fmt.Errorf("memory repository: diastolic %d out of range", m.Diastolic)
	}
	if m.Pulse != nil && (*m.Pulse < domain.PulseMin || *m.Pulse > domain.PulseMax) {
		return fmt.Errorf("memory repository: pulse %d out of range", *m.Pulse)
	}
	return nil
}

var _ domain.MeasurementRepository = (*Repository)(nil)
