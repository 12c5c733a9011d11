package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtel/internal/ingest"
	"fieldtel/internal/store"
	"fieldtel/pkg/migrations"
	"fieldtel/pkg/telemetry"
)

type capturingProducer struct {
	mu        sync.Mutex
	published []*telemetry.Message
}

func (p *capturingProducer) Publish(ctx context.Context, topic string, msg *telemetry.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, msg)
	return nil
}

func (p *capturingProducer) Close() error {
	return nil
}

func (p *capturingProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type allowAllValidator struct{}

func (allowAllValidator) Validate(ctx context.Context, machineID int) error {
	return nil
}

type denyAllValidator struct{}

func (denyAllValidator) Validate(ctx context.Context, machineID int) error {
	return errors.New("machine not found")
}

func TestIngestPipelineWithRealBackends(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, true, false)
	ctx := context.Background()

	require.NoError(t, migrations.EnsureMessageIndexes(ctx, infra.MongoDB))

	repo := store.NewMongoDBRepository(infra.MongoDB)
	log := createTestLogger()
	cache := ingest.NewRedisSeenCache(infra.RedisClient, 60)
	guard := ingest.NewGuard(repo, cache, log)
	producer := &capturingProducer{}
	relay := ingest.NewRelay(producer, "outbound_message_queue", log)
	svc := ingest.NewService(repo, allowAllValidator{}, []int{7}, guard, relay, nil, log)

	session := "7f1b6a2e-4df0-47f3-bc9f-0b8a3b5d12c4"

	require.NoError(t, svc.Process(ctx, createTestMessage(session, 7, 1)))
	require.NoError(t, svc.Process(ctx, createTestMessage(session, 7, 2)))

	// Repeat of sequence 1 is silently dropped.
	require.NoError(t, svc.Process(ctx, createTestMessage(session, 7, 1)))

	// Non-whitelisted machine is dropped even though the authority knows it.
	require.NoError(t, svc.Process(ctx, createTestMessage(session, 99, 3)))

	require.True(t, relay.Drain(5*time.Second))

	messages, err := repo.ListBySession(ctx, session)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, 2, producer.count())

	// The cache remembers both persisted pairs.
	seen, err := cache.Seen(ctx, session, 1)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = cache.Seen(ctx, session, 3)
	require.NoError(t, err)
	assert.False(t, seen, "rejected messages must not be marked as seen")
}

func TestIngestPipelineValidatorFailureIsFailClosed(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false, false)
	ctx := context.Background()

	require.NoError(t, migrations.EnsureMessageIndexes(ctx, infra.MongoDB))

	repo := store.NewMongoDBRepository(infra.MongoDB)
	log := createTestLogger()
	guard := ingest.NewGuard(repo, nil, log)
	producer := &capturingProducer{}
	relay := ingest.NewRelay(producer, "outbound_message_queue", log)
	svc := ingest.NewService(repo, denyAllValidator{}, []int{7}, guard, relay, nil, log)

	session := "e4c2b8d6-9f10-4a2b-8c3d-5f6a7b8c9d0e"
	require.NoError(t, svc.Process(ctx, createTestMessage(session, 7, 1)))

	require.True(t, relay.Drain(5*time.Second))

	messages, err := repo.ListBySession(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, 0, producer.count())
}
