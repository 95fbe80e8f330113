package errors

import (
	"math"
)

// maxReportedValues limits how many offending values are carried in a DomainError.
const maxReportedValues = 10

// CheckFinite returns a DomainError when values contains NaN or Inf.
// The solver uses it to reject model outputs that are undefined for the data,
// e.g. a logarithm evaluated at a non-positive x.
func CheckFinite(operation string, values []float64) error {
	var bad []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, v)
			if len(bad) >= maxReportedValues {
				break
			}
		}
	}
	if len(bad) > 0 {
		return NewDomainError(operation, "model produced non-finite values", bad)
	}
	return nil
}

// CheckScalar checks a single scalar value.
func CheckScalar(operation string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewDomainError(operation, "non-finite value", []float64{value})
	}
	return nil
}

// IsFinite reports whether every value is finite.
func IsFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
