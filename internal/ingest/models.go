package ingest

import "context"

// RejectReason classifies why the pipeline dropped a message. Rejections
// are terminal and silent: nothing is persisted, nothing is relayed, and no
// notification reaches the sender.
type RejectReason string

const (
	ReasonInvalid          RejectReason = "invalid"
	ReasonValidatorFailure RejectReason = "validator_failure"
	ReasonNotWhitelisted   RejectReason = "not_whitelisted"
	ReasonPolicyDenied     RejectReason = "policy_denied"
	ReasonDuplicate        RejectReason = "duplicate"
	ReasonGuardFailure     RejectReason = "guard_failure"
)

const statusAccepted = "accepted"

type Decision struct {
	Accepted bool
	Reason   RejectReason
}

func accept() Decision {
	return Decision{Accepted: true}
}

func reject(reason RejectReason) Decision {
	return Decision{Reason: reason}
}

// MachineValidator is the external authority lookup. Any error means the
// machine could not be validated and the message must be rejected.
type MachineValidator interface {
	Validate(ctx context.Context, machineID int) error
}
