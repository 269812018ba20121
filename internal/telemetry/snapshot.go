package telemetry

import "time"

// Origin records where a snapshot value came from.
type Origin int

const (
	OriginDefault Origin = iota
	OriginFresh
	OriginCached
)

// String returns a short origin name for logs.
func (o Origin) String() string {
	switch o {
	case OriginFresh:
		return "fresh"
	case OriginCached:
		return "cached"
	default:
		return "default"
	}
}

// MetricField is one resolved field of a snapshot.
type MetricField struct {
	Name  string
	Kind  Kind
	Value any // nil means the field's declared unknown marker
	From  Origin

	// ResolvedAt is when the value was fetched. Zero for defaults.
	ResolvedAt time.Time
}

// Snapshot is one tick's total telemetry record. Every catalog field is
// present. A Snapshot is never modified after Merge returns it.
type Snapshot struct {
	taken  time.Time
	order  []string
	fields map[string]MetricField
}

// Taken returns the time the tick started.
func (s Snapshot) Taken() time.Time {
	return s.taken
}

// Field returns the named field. Names outside the catalog yield an
// unknown text field so callers never see a missing key.
func (s Snapshot) Field(name string) MetricField {
	if f, ok := s.fields[name]; ok {
		return f
	}
	return MetricField{Name: name, Kind: KindText, From: OriginDefault}
}

// Value is shorthand for Field(name).Value.
func (s Snapshot) Value(name string) any {
	return s.Field(name).Value
}

// Has reports whether name is part of the snapshot's vocabulary.
func (s Snapshot) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Names returns field names in catalog order.
func (s Snapshot) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of fields.
func (s Snapshot) Len() int {
	return len(s.fields)
}
