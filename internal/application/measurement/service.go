package measurement

import (
	"context"
	"time"

	"bp-tracker-service/internal/domain"
)

// Service implements the measurement use-cases on top of the repository.
// Validation happens strictly before any store mutation.
type Service struct {
	repo  domain.MeasurementRepository
	clock func() time.Time
}

// Option customises the service.
type Option func(*Service)

// WithClock replaces the time source used to default measuredAt.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a measurement service backed by the provided repository.
func New(repo domain.MeasurementRepository, opts ...Option) *Service {
	s := &Service{repo: repo, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the raw attributes in full mode and inserts the
// resulting record.
func (s *Service) Create(ctx context.Context, attrs map[string]any) (domain.Measurement, error) {
	patch, errs := ValidateCreate(attrs, s.clock())
	if len(errs) > 0 {
		return domain.Measurement{}, &domain.ValidationError{Errors: errs}
	}
	return s.repo.Insert(ctx, patch)
}

// Get returns the measurement with the provided id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Measurement, error) {
	return s.repo.Get(ctx, id)
}

// List returns up to limit measurements, most recent measuredAt first.
func (s *Service) List(ctx context.Context, limit int) ([]domain.Measurement, error) {
	return s.repo.List(ctx, limit)
}

// Update validates the raw attributes in partial mode and applies only the
// supplied fields. An all-absent patch yields ErrNoFields.
func (s *Service) Update(ctx context.Context, id int64, attrs map[string]any) (domain.Measurement, error) {
	patch, errs := ValidatePatch(attrs)
	if len(errs) > 0 {
		return domain.Measurement{}, &domain.ValidationError{Errors: errs}
	}
	if !patch.HasFields() {
		return domain.Measurement{}, domain.ErrNoFields
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the measurement with the provided id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

var _ domain.MeasurementService = (*Service)(nil)
