package telemetry

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateMessage checks the structural invariants of a message. The data
// list may be empty but must be present.
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return &ValidationError{
			Field:   "message",
			Message: "message cannot be nil",
		}
	}

	if msg.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "message ID is required",
		}
	}

	if msg.SessionGUID == "" {
		return &ValidationError{
			Field:   "sessionGuid",
			Message: "session GUID is required",
		}
	}

	if msg.SequenceNumber <= 0 {
		return &ValidationError{
			Field:   "sequenceNumber",
			Message: "sequence number must be positive",
		}
	}

	if msg.MachineID <= 0 {
		return &ValidationError{
			Field:   "machineId",
			Message: "machine ID must be positive",
		}
	}

	if msg.Data == nil {
		return &ValidationError{
			Field:   "data",
			Message: "data cannot be nil",
		}
	}

	for i, record := range msg.Data {
		if _, err := ParseMeasurementType(string(record.Type)); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("data[%d].type", i),
				Message: err.Error(),
			}
		}
	}

	return nil
}
