package gateway

import (
	"fieldtel/pkg/telemetry"
)

// SubmitMessageRequest is the submission body. The message id is assigned
// by the gateway, never by the caller.
type SubmitMessageRequest struct {
	SessionGUID    string                        `json:"sessionGuid" binding:"required"`
	SequenceNumber int                           `json:"sequenceNumber" binding:"required,gt=0"`
	MachineID      int                           `json:"machineId" binding:"required,gt=0"`
	Data           []telemetry.MeasurementRecord `json:"data"`
}

func (r *SubmitMessageRequest) toMessage(id string) *telemetry.Message {
	data := r.Data
	if data == nil {
		data = []telemetry.MeasurementRecord{}
	}

	return &telemetry.Message{
		ID:             id,
		SessionGUID:    r.SessionGUID,
		SequenceNumber: r.SequenceNumber,
		MachineID:      r.MachineID,
		Data:           data,
	}
}
