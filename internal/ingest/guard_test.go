package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtel/internal/logger"
	"fieldtel/pkg/telemetry"
)

type fakeSeenCache struct {
	seen    map[string]bool
	seenErr error
	markErr error
	lookups int
	marks   int
}

func newFakeSeenCache() *fakeSeenCache {
	return &fakeSeenCache{seen: make(map[string]bool)}
}

func (c *fakeSeenCache) Seen(ctx context.Context, sessionGUID string, sequenceNumber int) (bool, error) {
	c.lookups++
	if c.seenErr != nil {
		return false, c.seenErr
	}
	return c.seen[pairKey(sessionGUID, sequenceNumber)], nil
}

func (c *fakeSeenCache) MarkSeen(ctx context.Context, sessionGUID string, sequenceNumber int) error {
	c.marks++
	if c.markErr != nil {
		return c.markErr
	}
	c.seen[pairKey(sessionGUID, sequenceNumber)] = true
	return nil
}

func TestGuardIsDuplicateEqualityOnly(t *testing.T) {
	repo := newFakeRepository()
	guard := NewGuard(repo, nil, logger.NopLogger())
	ctx := context.Background()

	session := "b2d1f7e0-9c11-47f8-8a1e-3de4f79a1f22"
	require.NoError(t, repo.Put(ctx, &telemetry.Message{
		ID:             "m-1",
		SessionGUID:    session,
		SequenceNumber: 5,
		MachineID:      7,
		Data:           []telemetry.MeasurementRecord{},
	}))

	tests := []struct {
		name           string
		sequenceNumber int
		want           bool
	}{
		{
			name:           "same pair is duplicate",
			sequenceNumber: 5,
			want:           true,
		},
		{
			name:           "lower sequence is not flagged",
			sequenceNumber: 3,
			want:           false,
		},
		{
			name:           "gap ahead is not flagged",
			sequenceNumber: 50,
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duplicate, err := guard.IsDuplicate(ctx, session, tt.sequenceNumber)
			require.NoError(t, err)
			assert.Equal(t, tt.want, duplicate)
		})
	}
}

func TestGuardDifferentSessionsIndependent(t *testing.T) {
	repo := newFakeRepository()
	guard := NewGuard(repo, nil, logger.NopLogger())
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &telemetry.Message{
		ID:             "m-1",
		SessionGUID:    "session-a",
		SequenceNumber: 5,
		MachineID:      7,
		Data:           []telemetry.MeasurementRecord{},
	}))

	duplicate, err := guard.IsDuplicate(ctx, "session-b", 5)
	require.NoError(t, err)
	assert.False(t, duplicate)
}

func TestGuardCacheHitSkipsStore(t *testing.T) {
	repo := newFakeRepository()
	cache := newFakeSeenCache()
	guard := NewGuard(repo, cache, logger.NopLogger())
	ctx := context.Background()

	guard.MarkPersisted(ctx, "session-a", 5)

	duplicate, err := guard.IsDuplicate(ctx, "session-a", 5)
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, 1, cache.lookups)
}

func TestGuardCacheErrorFallsBackToStore(t *testing.T) {
	repo := newFakeRepository()
	cache := newFakeSeenCache()
	cache.seenErr = errors.New("connection refused")
	guard := NewGuard(repo, cache, logger.NopLogger())
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &telemetry.Message{
		ID:             "m-1",
		SessionGUID:    "session-a",
		SequenceNumber: 5,
		MachineID:      7,
		Data:           []telemetry.MeasurementRecord{},
	}))

	duplicate, err := guard.IsDuplicate(ctx, "session-a", 5)
	require.NoError(t, err)
	assert.True(t, duplicate)
}

func TestGuardMarkPersistedFailureIsNotFatal(t *testing.T) {
	cache := newFakeSeenCache()
	cache.markErr = errors.New("connection refused")
	guard := NewGuard(newFakeRepository(), cache, logger.NopLogger())

	guard.MarkPersisted(context.Background(), "session-a", 5)
	assert.Equal(t, 1, cache.marks)
}
