package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtel/internal/broker"
	"fieldtel/internal/config"
	"fieldtel/pkg/telemetry"
)

func TestKafkaRoundTrip(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, false, true)

	brokerCfg := config.BrokerConfig{
		Type: "kafka",
		Kafka: config.KafkaConfig{
			Brokers: infra.KafkaBrokers,
			GroupID: "fieldtel-integration",
		},
	}

	log := createTestLogger()

	producer, err := broker.NewProducer(brokerCfg, log)
	require.NoError(t, err)
	defer producer.Close()

	consumer, err := broker.NewConsumer(brokerCfg, log)
	require.NoError(t, err)
	defer consumer.Close()
	consumer.SetServiceName("integration-test")

	topic := "inbound_message_queue"
	sent := createTestMessage("f0a1b2c3-d4e5-4f60-8172-93a4b5c6d7e8", 7, 1)

	received := make(chan *telemetry.Message, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	go func() {
		consumer.Consume(ctx, topic, func(cCtx context.Context, msg *telemetry.Message) error {
			select {
			case received <- msg:
			default:
			}
			return nil
		})
	}()

	// The group needs a moment to join before the first publish.
	time.Sleep(5 * time.Second)
	require.NoError(t, producer.Publish(ctx, topic, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, sent.SessionGUID, got.SessionGUID)
		assert.Equal(t, sent.SequenceNumber, got.SequenceNumber)
		require.Len(t, got.Data, 2)
		assert.Equal(t, telemetry.MeasurementDistance, got.Data[0].Type)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
