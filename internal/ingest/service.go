package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldtel/internal/logger"
	"fieldtel/internal/store"
	"fieldtel/pkg/metrics"
	"fieldtel/pkg/policy"
	"fieldtel/pkg/retry"
	"fieldtel/pkg/telemetry"
)

// Service is the ingress pipeline: it evaluates authorization for each
// inbound message, persists accepted ones and hands them to the relay. All
// collaborators are plain constructor arguments.
type Service struct {
	repo      store.Repository
	validator MachineValidator
	whitelist map[int]struct{}
	guard     *Guard
	relay     *Relay
	policy    *policy.Policy
	logger    logger.Logger
}

func NewService(repo store.Repository, validator MachineValidator, whitelist []int, guard *Guard, relay *Relay, admission *policy.Policy, log logger.Logger) *Service {
	allowed := make(map[int]struct{}, len(whitelist))
	for _, id := range whitelist {
		allowed[id] = struct{}{}
	}

	return &Service{
		repo:      repo,
		validator: validator,
		whitelist: allowed,
		guard:     guard,
		relay:     relay,
		policy:    admission,
		logger:    log,
	}
}

// Evaluate decides whether the message is authorized and non-duplicate.
// External validation is fail-closed: any authority failure, including the
// machine not being known, rejects the message.
func (s *Service) Evaluate(ctx context.Context, msg *telemetry.Message) Decision {
	if err := s.validator.Validate(ctx, msg.MachineID); err != nil {
		s.logger.WarnwCtx(ctx, "Machine validation failed, rejecting",
			"machine_id", msg.MachineID,
			"error", err,
		)
		return reject(ReasonValidatorFailure)
	}

	if _, ok := s.whitelist[msg.MachineID]; !ok {
		s.logger.InfowCtx(ctx, "Machine not in whitelist, rejecting",
			"machine_id", msg.MachineID,
		)
		return reject(ReasonNotWhitelisted)
	}

	if s.policy != nil {
		allowed, err := s.policy.Allow(msg)
		if err != nil {
			s.logger.WarnwCtx(ctx, "Admission policy evaluation failed, rejecting",
				"error", err,
			)
			return reject(ReasonPolicyDenied)
		}
		if !allowed {
			s.logger.InfowCtx(ctx, "Admission policy denied message",
				"expression", s.policy.Expression(),
			)
			return reject(ReasonPolicyDenied)
		}
	}

	duplicate, err := s.guard.IsDuplicate(ctx, msg.SessionGUID, msg.SequenceNumber)
	if err != nil {
		s.logger.ErrorwCtx(ctx, "Duplicate check failed, rejecting",
			"error", err,
		)
		return reject(ReasonGuardFailure)
	}
	if duplicate {
		s.logger.InfowCtx(ctx, "Duplicate sequence number, rejecting",
			"sequence_number", msg.SequenceNumber,
		)
		return reject(ReasonDuplicate)
	}

	return accept()
}

// Process runs one message through the pipeline. Rejections are terminal
// and silent. A store write failure is returned as a fatal error so the
// consumer drops (or dead-letters) the message without retrying; every
// other outcome returns nil.
func (s *Service) Process(ctx context.Context, msg *telemetry.Message) error {
	start := time.Now()

	if err := telemetry.ValidateMessage(msg); err != nil {
		s.logger.WarnwCtx(ctx, "Malformed message, skipping",
			"error", err,
		)
		s.record(start, string(ReasonInvalid))
		return nil
	}

	s.logger.DebugwCtx(ctx, "Processing message",
		"machine_id", msg.MachineID,
		"sequence_number", msg.SequenceNumber,
	)

	decision := s.Evaluate(ctx, msg)
	if !decision.Accepted {
		s.record(start, string(decision.Reason))
		return nil
	}

	if err := s.repo.Put(ctx, msg); err != nil {
		if errors.Is(err, store.ErrDuplicateSequence) {
			// Lost the insert race: another worker persisted this pair
			// after our duplicate pre-check. Same verdict as the guard.
			s.logger.InfowCtx(ctx, "Concurrent duplicate detected by store, rejecting",
				"sequence_number", msg.SequenceNumber,
			)
			s.record(start, string(ReasonDuplicate))
			return nil
		}

		s.logger.ErrorwCtx(ctx, "Failed to persist message",
			"error", err,
		)
		s.record(start, "persist_failure")
		return retry.NewFatalError(fmt.Errorf("persist message %s: %w", msg.ID, err))
	}

	s.guard.MarkPersisted(ctx, msg.SessionGUID, msg.SequenceNumber)

	s.logger.InfowCtx(ctx, "Message accepted",
		"machine_id", msg.MachineID,
		"sequence_number", msg.SequenceNumber,
	)
	s.record(start, statusAccepted)

	s.relay.Emit(msg)
	return nil
}

func (s *Service) record(start time.Time, status string) {
	metrics.IngestMessagesTotal.WithLabelValues(status).Inc()
	metrics.ObserveIngestDuration(time.Since(start), status)
}
