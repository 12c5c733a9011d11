package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validMessage() *Message {
	return &Message{
		ID:             "2e9cf6a0-7e42-4cc4-bb90-0a2c6f6984f1",
		SessionGUID:    "b2d1f7e0-9c11-47f8-8a1e-3de4f79a1f22",
		SequenceNumber: 1,
		MachineID:      7,
		Data: []MeasurementRecord{
			{Type: MeasurementDistance, Unit: "m", Value: "120"},
		},
	}
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Message)
		wantField string
	}{
		{
			name:   "valid message",
			mutate: func(m *Message) {},
		},
		{
			name:   "empty data list is valid",
			mutate: func(m *Message) { m.Data = []MeasurementRecord{} },
		},
		{
			name:      "missing id",
			mutate:    func(m *Message) { m.ID = "" },
			wantField: "id",
		},
		{
			name:      "missing session guid",
			mutate:    func(m *Message) { m.SessionGUID = "" },
			wantField: "sessionGuid",
		},
		{
			name:      "zero sequence number",
			mutate:    func(m *Message) { m.SequenceNumber = 0 },
			wantField: "sequenceNumber",
		},
		{
			name:      "negative sequence number",
			mutate:    func(m *Message) { m.SequenceNumber = -4 },
			wantField: "sequenceNumber",
		},
		{
			name:      "zero machine id",
			mutate:    func(m *Message) { m.MachineID = 0 },
			wantField: "machineId",
		},
		{
			name:      "nil data",
			mutate:    func(m *Message) { m.Data = nil },
			wantField: "data",
		},
		{
			name:      "unknown measurement type",
			mutate:    func(m *Message) { m.Data[0].Type = "velocity" },
			wantField: "data[0].type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validMessage()
			tt.mutate(msg)

			err := ValidateMessage(msg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestValidateMessageNil(t *testing.T) {
	err := ValidateMessage(nil)
	assert.Error(t, err)
}
