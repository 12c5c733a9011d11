package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtel/pkg/telemetry"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name: "machine id comparison",
			expr: `machineId == 7`,
		},
		{
			name: "sequence bound",
			expr: `sequenceNumber < 100000`,
		},
		{
			name: "data macro",
			expr: `data.all(d, d.unit != "")`,
		},
		{
			name:      "non-bool output",
			expr:      `sequenceNumber + 1`,
			wantError: true,
		},
		{
			name:      "syntax error",
			expr:      `machineId ==`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `operatorId == 3`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expr, p.Expression())
		})
	}
}

func TestPolicyAllow(t *testing.T) {
	msg := &telemetry.Message{
		ID:             "m-1",
		SessionGUID:    "s-1",
		SequenceNumber: 42,
		MachineID:      7,
		Data: []telemetry.MeasurementRecord{
			{Type: telemetry.MeasurementDistance, Unit: "m", Value: "120"},
			{Type: telemetry.MeasurementWorkedSurface, Unit: "ha", Value: "2.5"},
		},
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{
			name: "machine allowed",
			expr: `machineId == 7`,
			want: true,
		},
		{
			name: "machine denied",
			expr: `machineId == 8`,
			want: false,
		},
		{
			name: "sequence within bound",
			expr: `sequenceNumber < 100`,
			want: true,
		},
		{
			name: "session guid match",
			expr: `sessionGuid == "s-1"`,
			want: true,
		},
		{
			name: "all records carry a unit",
			expr: `data.all(d, d.unit != "")`,
			want: true,
		},
		{
			name: "exists on measurement type",
			expr: `data.exists(d, d.type == "workedSurface")`,
			want: true,
		},
		{
			name: "no matching record",
			expr: `data.exists(d, d.type == "distance" && d.unit == "km")`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			require.NoError(t, err)

			allowed, err := p.Allow(msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestPolicyAllowEmptyData(t *testing.T) {
	p, err := Compile(`data.all(d, d.unit != "")`)
	require.NoError(t, err)

	allowed, err := p.Allow(&telemetry.Message{
		ID:             "m-1",
		SessionGUID:    "s-1",
		SequenceNumber: 1,
		MachineID:      7,
		Data:           []telemetry.MeasurementRecord{},
	})
	require.NoError(t, err)
	assert.True(t, allowed)
}
