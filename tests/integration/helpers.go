package integration

import (
	"fmt"

	"github.com/google/uuid"

	"fieldtel/internal/logger"
	"fieldtel/pkg/telemetry"
)

const (
	containerStartupTimeout = 60
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func createTestMessage(sessionGUID string, machineID, sequenceNumber int) *telemetry.Message {
	return &telemetry.Message{
		ID:             uuid.NewString(),
		SessionGUID:    sessionGUID,
		SequenceNumber: sequenceNumber,
		MachineID:      machineID,
		Data: []telemetry.MeasurementRecord{
			{Type: telemetry.MeasurementDistance, Unit: "m", Value: fmt.Sprintf("%d", sequenceNumber*100)},
			{Type: telemetry.MeasurementWorkedSurface, Unit: "ha", Value: "2.5"},
		},
	}
}
