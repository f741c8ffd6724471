package domain

// Status is the severity tier derived from a systolic/diastolic pair. It
// is computed at serialization time and never stored.
type Status string

const (
	StatusNormal          Status = "normal"
	StatusPrehypertension Status = "prehypertension"
	StatusElevated        Status = "elevated"
	StatusHigh            Status = "high"
	StatusDanger          Status = "danger"
)

// statusThresholds is evaluated top-down; the first rule where either
// axis reaches its threshold wins. Either value alone can raise the tier,
// so the rules must stay OR-based.
var statusThresholds = []struct {
	systolic  int
	diastolic int
	status    Status
}{
	{180, 120, StatusDanger},
	{160, 100, StatusHigh},
	{140, 90, StatusElevated},
	{120, 80, StatusPrehypertension},
}

// Classify maps a systolic/diastolic pair onto its severity tier.
func Classify(systolic, diastolic int) Status {
	for _, rule := range statusThresholds {
		if systolic >= rule.systolic || diastolic >= rule.diastolic {
			return rule.status
		}
	}
	return StatusNormal
}
