package enums

import "fmt"

// MassSource records where a submission's mass figure came from.
type MassSource string

const (
	MassSourceMeasured  MassSource = "measured"
	MassSourcePredicted MassSource = "predicted"
	MassSourceNone      MassSource = "none"
)

var validMassSources = []MassSource{
	MassSourceMeasured,
	MassSourcePredicted,
	MassSourceNone,
}

// String implements fmt.Stringer.
func (m MassSource) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MassSource.
func (m MassSource) IsValid() bool {
	for _, candidate := range validMassSources {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMassSource converts raw input into a MassSource.
func ParseMassSource(value string) (MassSource, error) {
	for _, candidate := range validMassSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mass source %q", value)
}
