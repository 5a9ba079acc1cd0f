package domain

// FeeSource exposes the named price fields of a marketplace record. Fields the
// record does not carry report 0.
type FeeSource interface {
	Fee(field string) float64
}

// Limit caps a single fee field. A value passes when it is strictly below Max.
type Limit struct {
	Field string
	Max   float64
}

// FeeThreshold accepts a record only if every limited field is below its cap.
//
// Absent fields read as 0 and therefore pass any positive cap.
type FeeThreshold []Limit

func (t FeeThreshold) Accepts(record FeeSource) bool {
	if record == nil {
		return false
	}
	for _, limit := range t {
		if !(record.Fee(limit.Field) < limit.Max) {
			return false
		}
	}
	return true
}
