package domain_test

import (
	"testing"

	"bp-tracker-service/internal/domain"
)

var severityRank = map[domain.Status]int{
	domain.StatusNormal:          0,
	domain.StatusPrehypertension: 1,
	domain.StatusElevated:        2,
	domain.StatusHigh:            3,
	domain.StatusDanger:          4,
}

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		systolic  int
		diastolic int
		want      domain.Status
	}{
		{180, 70, domain.StatusDanger},
		{179, 70, domain.StatusHigh},
		{160, 70, domain.StatusHigh},
		{159, 70, domain.StatusElevated},
		{140, 70, domain.StatusElevated},
		{139, 70, domain.StatusPrehypertension},
		{120, 70, domain.StatusPrehypertension},
		{119, 70, domain.StatusNormal},
		{120, 79, domain.StatusPrehypertension},
		{110, 120, domain.StatusDanger},
		{110, 119, domain.StatusHigh},
		{110, 100, domain.StatusHigh},
		{110, 99, domain.StatusElevated},
		{110, 90, domain.StatusElevated},
		{110, 89, domain.StatusPrehypertension},
		{110, 80, domain.StatusPrehypertension},
		{110, 79, domain.StatusNormal},
		{40, 20, domain.StatusNormal},
		{260, 200, domain.StatusDanger},
	}

	for _, tc := range cases {
		if got := domain.Classify(tc.systolic, tc.diastolic); got != tc.want {
			t.Errorf("Classify(%d, %d) = %q, want %q", tc.systolic, tc.diastolic, got, tc.want)
		}
	}
}

// TestClassifyMonotonic checks that severity never decreases as either
// value increases, over the whole valid domain.
func TestClassifyMonotonic(t *testing.T) {
	t.Parallel()

	for systolic := domain.SystolicMin; systolic <= domain.SystolicMax; systolic++ {
		for diastolic := domain.DiastolicMin; diastolic <= domain.DiastolicMax; diastolic++ {
			status := domain.Classify(systolic, diastolic)
			rank, known := severityRank[status]
			if !known {
				t.Fatalf("Classify(%d, %d) returned unknown tier %q", systolic, diastolic, status)
			}

			if systolic < domain.SystolicMax {
				next := domain.Classify(systolic+1, diastolic)
				if severityRank[next] < rank {
					t.Fatalf("severity decreased from %q to %q at systolic %d -> %d (diastolic %d)",
						status, next, systolic, systolic+1, diastolic)
				}
			}
			if diastolic < domain.DiastolicMax {
				next := domain.Classify(systolic, diastolic+1)
				if severityRank[next] < rank {
					t.Fatalf("severity decreased from %q to %q at diastolic %d -> %d (systolic %d)",
						status, next, diastolic, diastolic+1, systolic)
				}
			}
		}
	}
}
