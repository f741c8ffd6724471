package domain

import "time"

// Measurement is a single blood-pressure reading as stored in the
// repository. Pulse is optional and nil when the reading has none.
type Measurement struct {
	ID         int64
	Systolic   int
	Diastolic  int
	Pulse      *int
	MeasuredAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Field ranges enforced by the validator and again at the persistence
// boundary.
const (
	SystolicMin  = 40
	SystolicMax  = 260
	DiastolicMin = 20
	DiastolicMax = 200
	PulseMin     = 20
	PulseMax     = 250
)

// Optional is a three-way optional: a field in a patch is either absent,
// explicitly null, or carries a value. A plain pointer cannot distinguish
// absent from null, and that distinction is what lets a partial update
// clear the pulse field.
type Optional[T any] struct {
	present bool
	valid   bool
	value   T
}

// Some returns an Optional carrying a value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{present: true, valid: true, value: value}
}

// Null returns an Optional that is present but explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true}
}

// Present reports whether the field appeared in the input at all.
func (o Optional[T]) Present() bool { return o.present }

// IsNull reports whether the field was supplied as an explicit null.
func (o Optional[T]) IsNull() bool { return o.present && !o.valid }

// Get returns the carried value and whether one is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present && o.valid
}

// MeasurementPatch is a validated, normalized set of measurement fields
// ready for persistence. Absent fields are left untouched on update; only
// Pulse may legally be present-null.
type MeasurementPatch struct {
	Systolic   Optional[int]
	Diastolic  Optional[int]
	Pulse      Optional[int]
	MeasuredAt Optional[time.Time]
}

// HasFields reports whether the patch carries at least one field.
func (p MeasurementPatch) HasFields() bool {
	return p.Systolic.Present() || p.Diastolic.Present() ||
		p.Pulse.Present() || p.MeasuredAt.Present()
}
