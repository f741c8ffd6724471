package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"bp-tracker-service/internal/domain"
)

const (
	// DefaultLimit is the bucket count used when the caller supplies none.
	DefaultLimit = 30
	// LimitCeiling caps the requested bucket count.
	LimitCeiling = 180
)

// Service groups stored measurements into calendar buckets and computes
// per-bucket descriptive statistics. Bucket boundaries are taken in an
// explicitly configured location rather than whatever timezone the
// database happens to run in.
type Service struct {
	repo    domain.MeasurementRepository
	loc     *time.Location
	ceiling int
}

// Option customises the service.
type Option func(*Service)

// WithLocation sets the timezone used for bucket boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLimitCeiling overrides the maximum bucket count.
func WithLimitCeiling(ceiling int) Option {
	return func(s *Service) {
		if ceiling > 0 {
			s.ceiling = ceiling
		}
	}
}

// New creates a stats service backed by the provided repository. Buckets
// default to UTC boundaries.
func New(repo domain.MeasurementRepository, opts ...Option) *Service {
	s := &Service{repo: repo, loc: time.UTC, ceiling: LimitCeiling}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type accumulator struct {
	count        int
	sumSystolic  int
	sumDiastolic int
	sumPulse     int
	pulseCount   int
	minSystolic  int
	maxSystolic  int
	minDiastolic int
	maxDiastolic int
}

// Summary buckets all stored measurements by the requested granularity and
// returns up to limit buckets, most recent first. Unknown granularities
// fall back to day; the granularity actually used is part of the result.
func (s *Service) Summary(ctx context.Context, granularity string, limit int) (domain.StatsSummary, error) {
	g := domain.ParseGranularity(granularity)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > s.ceiling {
		limit = s.ceiling
	}

	measurements, err := s.repo.ListForAggregation(ctx, nil)
	if err != nil {
		return domain.StatsSummary{}, err
	}

	groups := make(map[time.Time]*accumulator)
	for _, m := range measurements {
		bucket := g.Truncate(m.MeasuredAt, s.loc)
		acc, ok := groups[bucket]
		if !ok {
			acc = &accumulator{
				minSystolic:  m.Systolic,
				maxSystolic:  m.Systolic,
				minDiastolic: m.Diastolic,
				maxDiastolic: m.Diastolic,
			}
			groups[bucket] = acc
		}
		acc.count++
		acc.sumSystolic += m.Systolic
		acc.sumDiastolic += m.Diastolic
		if m.Pulse != nil {
			acc.sumPulse += *m.Pulse
			acc.pulseCount++
		}
		acc.minSystolic = min(acc.minSystolic, m.Systolic)
		acc.maxSystolic = max(acc.maxSystolic, m.Systolic)
		acc.minDiastolic = min(acc.minDiastolic, m.Diastolic)
		acc.maxDiastolic = max(acc.maxDiastolic, m.Diastolic)
	}

	buckets := make([]domain.StatsBucket, 0, len(groups))
	for start, acc := range groups {
		bucket := domain.StatsBucket{
			Bucket:       start,
			Count:        acc.count,
			AvgSystolic:  round2(float64(acc.sumSystolic) / float64(acc.count)),
			AvgDiastolic: round2(float64(acc.sumDiastolic) / float64(acc.count)),
			MinSystolic:  acc.minSystolic,
			MaxSystolic:  acc.maxSystolic,
			MinDiastolic: acc.minDiastolic,
			MaxDiastolic: acc.maxDiastolic,
		}
		if acc.pulseCount > 0 {
			avgPulse := round2(float64(acc.sumPulse) / float64(acc.pulseCount))
			bucket.AvgPulse = &avgPulse
		}
		buckets = append(buckets, bucket)
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Bucket.After(buckets[j].Bucket)
	})
	if len(buckets) > limit {
		buckets = buckets[:limit]
	}

	return domain.StatsSummary{Granularity: g, Buckets: buckets}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ domain.StatsService = (*Service)(nil)
