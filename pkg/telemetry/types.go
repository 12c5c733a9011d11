package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MeasurementType is the closed set of measurement kinds a machine reports.
type MeasurementType string

const (
	MeasurementDistance      MeasurementType = "distance"
	MeasurementWorkedSurface MeasurementType = "workedSurface"
)

// ParseMeasurementType is the single canonical parse for measurement types.
// Matching is case-insensitive and ignores separators, so "WORKED_SURFACE"
// and "workedsurface" both resolve to MeasurementWorkedSurface.
func ParseMeasurementType(value string) (MeasurementType, error) {
	normalized := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(value))

	switch normalized {
	case "distance":
		return MeasurementDistance, nil
	case "workedsurface":
		return MeasurementWorkedSurface, nil
	}
	return "", fmt.Errorf("unknown measurement type: %q", value)
}

func (t MeasurementType) String() string {
	return string(t)
}

func (t MeasurementType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *MeasurementType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseMeasurementType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
