package ingest

import (
	"context"
	"sync"
	"time"

	"fieldtel/internal/broker"
	"fieldtel/internal/constants"
	"fieldtel/internal/logger"
	"fieldtel/pkg/logging"
	"fieldtel/pkg/metrics"
	"fieldtel/pkg/telemetry"
)

// Relay republishes accepted messages to the outbound topic. Publishes are
// asynchronous and never feed back into the message's processing outcome: a
// message counts as processed once persisted, whatever happens here. The
// emitter does track in-flight publishes so completions are observed for
// logging and metrics, and shutdown drains them instead of dropping them.
type Relay struct {
	producer broker.Producer
	topic    string
	logger   logger.Logger
	wg       sync.WaitGroup
}

func NewRelay(producer broker.Producer, topic string, log logger.Logger) *Relay {
	if topic == "" {
		topic = constants.DefaultOutputTopic
	}
	return &Relay{
		producer: producer,
		topic:    topic,
		logger:   log,
	}
}

// Emit publishes the message on its own goroutine and returns immediately.
// The publish uses a detached context so worker cancellation does not abort
// an already-accepted message's relay.
func (r *Relay) Emit(msg *telemetry.Message) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), constants.KafkaWriteTimeout)
		defer cancel()

		ctx = logging.WithMessageID(ctx, msg.ID)
		ctx = logging.WithSessionGUID(ctx, msg.SessionGUID)

		if err := r.producer.Publish(ctx, r.topic, msg); err != nil {
			metrics.RelayPublishTotal.WithLabelValues("failure").Inc()
			r.logger.ErrorwCtx(ctx, "Outbound relay publish failed",
				"error", err,
				"topic", r.topic,
			)
			return
		}

		metrics.RelayPublishTotal.WithLabelValues("success").Inc()
		r.logger.DebugwCtx(ctx, "Message relayed",
			"topic", r.topic,
		)
	}()
}

// Drain waits for in-flight publishes, up to the given timeout.
func (r *Relay) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
