package measurement

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"bp-tracker-service/internal/domain"
)

// mode controls whether absent fields are required (create) or skipped
// (partial update).
type mode int

const (
	modeFull mode = iota
	modePartial
)

// timestampLayouts are tried in order when measuredAt arrives as a string.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidateCreate checks a raw attribute map for insertion. Required fields
// are validated even when absent; measuredAt defaults to now. It returns
// either a normalized patch or the ordered list of field errors.
func ValidateCreate(attrs map[string]any, now time.Time) (domain.MeasurementPatch, []string) {
	return validate(attrs, modeFull, now)
}

// ValidatePatch checks a raw attribute map for a partial update. Fields
// absent from the input are omitted from the patch entirely, which is how
// untouched columns stay untouched.
func ValidatePatch(attrs map[string]any) (domain.MeasurementPatch, []string) {
	return validate(attrs, modePartial, time.Time{})
}

func validate(attrs map[string]any, m mode, now time.Time) (domain.MeasurementPatch, []string) {
	var patch domain.MeasurementPatch
	var errs []string

	_, hasSystolic := attrs["systolic"]
	if m == modeFull || hasSystolic {
		patch.Systolic, errs = validateRange(errs, "systolic", attrs["systolic"], domain.SystolicMin, domain.SystolicMax)
	}

	_, hasDiastolic := attrs["diastolic"]
	if m == modeFull || hasDiastolic {
		patch.Diastolic, errs = validateRange(errs, "diastolic", attrs["diastolic"], domain.DiastolicMin, domain.DiastolicMax)
	}

	if raw, ok := attrs["pulse"]; ok {
		if isEmpty(raw) {
			patch.Pulse = domain.Null[int]()
		} else {
			patch.Pulse, errs = validateRange(errs, "pulse", raw, domain.PulseMin, domain.PulseMax)
		}
	}

	if raw, ok := attrs["measuredAt"]; ok {
		if ts, ok := parseInstant(raw); ok {
			patch.MeasuredAt = domain.Some(ts.UTC())
		} else {
			errs = append(errs, "measuredAt must be a valid date")
		}
	} else if m == modeFull {
		patch.MeasuredAt = domain.Some(now.UTC())
	}

	if len(errs) > 0 {
		return domain.MeasurementPatch{}, errs
	}
	return patch, nil
}

func validateRange(errs []string, field string, raw any, lo, hi int) (domain.Optional[int], []string) {
	value, ok := toNumber(raw)
	if !ok {
		return domain.Optional[int]{}, append(errs, fmt.Sprintf("%s must be a number", field))
	}
	if value < float64(lo) || value > float64(hi) {
		return domain.Optional[int]{}, append(errs, fmt.Sprintf("%s must be between %d and %d", field, lo, hi))
	}
	return domain.Some(int(math.Round(value))), errs
}

// toNumber coerces JSON numbers and numeric strings to a finite float.
func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, isFinite(parsed)
	case float64:
		return v, isFinite(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, isFinite(parsed)
	default:
		return 0, false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isEmpty(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

// parseInstant accepts timestamps as strings in common layouts or as
// milliseconds since the Unix epoch.
func parseInstant(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case json.Number, float64, int, int64:
		millis, ok := toNumber(v)
		if !ok {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(millis)), true
	default:
		return time.Time{}, false
	}
}
