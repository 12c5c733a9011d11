package telemetry

// Message is a single telemetry submission from a field machine. It is
// immutable once created: the pipeline persists it verbatim and never
// updates or deletes it.
type Message struct {
	ID             string              `json:"id" bson:"_id"`
	SessionGUID    string              `json:"sessionGuid" bson:"session_guid"`
	SequenceNumber int                 `json:"sequenceNumber" bson:"sequence_number"`
	MachineID      int                 `json:"machineId" bson:"machine_id"`
	Data           []MeasurementRecord `json:"data" bson:"data"`
}

// MeasurementRecord carries one measurement. Value is transported as text
// and is never parsed numerically by this system.
type MeasurementRecord struct {
	Type  MeasurementType `json:"type" bson:"type"`
	Unit  string          `json:"unit" bson:"unit"`
	Value string          `json:"value" bson:"value"`
}
