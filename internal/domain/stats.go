package domain

import "time"

// Granularity selects the calendar period measurements are bucketed into.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity maps a request parameter onto a granularity; anything
// unrecognised falls back to day.
func ParseGranularity(value string) Granularity {
	switch Granularity(value) {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(value)
	default:
		return GranularityDay
	}
}

// Truncate returns the start of the granularity-aligned period containing
// t, in the provided location. Weeks start on Monday.
func (g Granularity) Truncate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	year, month, day := t.Date()
	switch g {
	case GranularityWeek:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return time.Date(year, month, day-weekday+1, 0, 0, 0, 0, loc)
	case GranularityMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(year, month, day, 0, 0, 0, 0, loc)
	}
}

// StatsBucket holds the descriptive statistics of one calendar period.
// AvgPulse is nil when no member of the bucket has a pulse.
type StatsBucket struct {
	Bucket       time.Time
	Count        int
	AvgSystolic  float64
	AvgDiastolic float64
	AvgPulse     *float64
	MinSystolic  int
	MaxSystolic  int
	MinDiastolic int
	MaxDiastolic int
}

// StatsSummary is the aggregation result: the granularity actually used
// and the buckets ordered most-recent-first.
type StatsSummary struct {
	Granularity Granularity
	Buckets     []StatsBucket
}
