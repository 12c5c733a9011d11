package store

import (
	"context"
	"errors"

	"fieldtel/pkg/telemetry"
)

var (
	// ErrNotFound is returned by GetByID when no message has the given id.
	ErrNotFound = errors.New("message not found")

	// ErrDuplicateSequence is returned by Put when a message with the same
	// (sessionGuid, sequenceNumber) pair is already persisted. The insert is
	// the atomic check: concurrent writers racing on the same pair cannot
	// both succeed.
	ErrDuplicateSequence = errors.New("duplicate session sequence number")
)

// Repository is the message store surface. Messages are write-once: there
// is no update or delete.
type Repository interface {
	Put(ctx context.Context, msg *telemetry.Message) error
	GetByID(ctx context.Context, id string) (*telemetry.Message, error)
	ListBySession(ctx context.Context, sessionGUID string) ([]telemetry.Message, error)
}
