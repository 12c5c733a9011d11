package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeasurementType(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      MeasurementType
		wantError bool
	}{
		{
			name:  "distance lowercase",
			input: "distance",
			want:  MeasurementDistance,
		},
		{
			name:  "distance uppercase",
			input: "DISTANCE",
			want:  MeasurementDistance,
		},
		{
			name:  "worked surface camel case",
			input: "workedSurface",
			want:  MeasurementWorkedSurface,
		},
		{
			name:  "worked surface snake case",
			input: "worked_surface",
			want:  MeasurementWorkedSurface,
		},
		{
			name:  "worked surface screaming snake case",
			input: "WORKED_SURFACE",
			want:  MeasurementWorkedSurface,
		},
		{
			name:  "worked surface kebab case",
			input: "worked-surface",
			want:  MeasurementWorkedSurface,
		},
		{
			name:      "unknown type",
			input:     "velocity",
			wantError: true,
		},
		{
			name:      "empty string",
			input:     "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMeasurementType(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "unknown measurement type")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMeasurementTypeUnmarshalJSON(t *testing.T) {
	var record MeasurementRecord
	err := json.Unmarshal([]byte(`{"type":"WORKED_SURFACE","unit":"ha","value":"2.5"}`), &record)
	require.NoError(t, err)
	assert.Equal(t, MeasurementWorkedSurface, record.Type)

	err = json.Unmarshal([]byte(`{"type":"velocity","unit":"kph","value":"12"}`), &record)
	assert.Error(t, err)
}

func TestMeasurementTypeMarshalJSON(t *testing.T) {
	out, err := json.Marshal(MeasurementRecord{
		Type:  MeasurementWorkedSurface,
		Unit:  "ha",
		Value: "2.5",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"workedSurface","unit":"ha","value":"2.5"}`, string(out))
}
