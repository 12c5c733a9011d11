package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtel/internal/logger"
	"fieldtel/internal/store"
	"fieldtel/pkg/telemetry"
)

type fakeProducer struct {
	published []*telemetry.Message
	topics    []string
	err       error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, msg *telemetry.Message) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakeProducer) Close() error {
	return nil
}

type fakeRepository struct {
	byID      map[string]*telemetry.Message
	bySession map[string][]telemetry.Message
	listErr   error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		byID:      make(map[string]*telemetry.Message),
		bySession: make(map[string][]telemetry.Message),
	}
}

func (r *fakeRepository) Put(ctx context.Context, msg *telemetry.Message) error {
	r.byID[msg.ID] = msg
	r.bySession[msg.SessionGUID] = append(r.bySession[msg.SessionGUID], *msg)
	return nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id string) (*telemetry.Message, error) {
	msg, ok := r.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return msg, nil
}

func (r *fakeRepository) ListBySession(ctx context.Context, sessionGUID string) ([]telemetry.Message, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.bySession[sessionGUID], nil
}

func newTestRouter(producer *fakeProducer, repo *fakeRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewHandler(producer, repo, logger.NopLogger())
	handler.RegisterRoutes(router)
	return router
}

func TestSubmitMessage(t *testing.T) {
	producer := &fakeProducer{}
	router := newTestRouter(producer, newFakeRepository())

	body := `{
		"sessionGuid": "b2d1f7e0-9c11-47f8-8a1e-3de4f79a1f22",
		"sequenceNumber": 1,
		"machineId": 7,
		"data": [{"type": "distance", "unit": "m", "value": "120"}]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response telemetry.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	_, err := uuid.Parse(response.ID)
	assert.NoError(t, err, "response must carry a server-assigned UUID")
	assert.Equal(t, "b2d1f7e0-9c11-47f8-8a1e-3de4f79a1f22", response.SessionGUID)
	assert.Equal(t, 1, response.SequenceNumber)
	assert.Equal(t, 7, response.MachineID)

	require.Len(t, producer.published, 1)
	assert.Equal(t, "inbound_message_queue", producer.topics[0])
	assert.Equal(t, response.ID, producer.published[0].ID)
}

func TestSubmitMessageTopicOverride(t *testing.T) {
	producer := &fakeProducer{}
	router := newTestRouter(producer, newFakeRepository())

	body := `{"sessionGuid": "s-1", "sequenceNumber": 1, "machineId": 7, "data": []}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/messages?topic=replay_queue", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, producer.topics, 1)
	assert.Equal(t, "replay_queue", producer.topics[0])
}

func TestSubmitMessageValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "malformed json",
			body: `{"sessionGuid": `,
		},
		{
			name: "missing session guid",
			body: `{"sequenceNumber": 1, "machineId": 7, "data": []}`,
		},
		{
			name: "zero sequence number",
			body: `{"sessionGuid": "s-1", "sequenceNumber": 0, "machineId": 7, "data": []}`,
		},
		{
			name: "negative machine id",
			body: `{"sessionGuid": "s-1", "sequenceNumber": 1, "machineId": -2, "data": []}`,
		},
		{
			name: "unknown measurement type",
			body: `{"sessionGuid": "s-1", "sequenceNumber": 1, "machineId": 7, "data": [{"type": "velocity", "unit": "kph", "value": "12"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			producer := &fakeProducer{}
			router := newTestRouter(producer, newFakeRepository())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, producer.published)
		})
	}
}

func TestSubmitMessagePublishFailure(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unavailable")}
	router := newTestRouter(producer, newFakeRepository())

	body := `{"sessionGuid": "s-1", "sequenceNumber": 1, "machineId": 7, "data": []}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetMessage(t *testing.T) {
	repo := newFakeRepository()
	require.NoError(t, repo.Put(context.Background(), &telemetry.Message{
		ID:             "m-1",
		SessionGUID:    "s-1",
		SequenceNumber: 1,
		MachineID:      7,
		Data:           []telemetry.MeasurementRecord{},
	}))
	router := newTestRouter(&fakeProducer{}, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/messages/m-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response telemetry.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "m-1", response.ID)
}

func TestGetMessageNotFound(t *testing.T) {
	router := newTestRouter(&fakeProducer{}, newFakeRepository())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/messages/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSessionMessages(t *testing.T) {
	repo := newFakeRepository()
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, &telemetry.Message{
		ID:             "m-1",
		SessionGUID:    "s-1",
		SequenceNumber: 1,
		MachineID:      7,
		Data:           []telemetry.MeasurementRecord{},
	}))
	require.NoError(t, repo.Put(ctx, &telemetry.Message{
		ID:             "m-2",
		SessionGUID:    "s-1",
		SequenceNumber: 2,
		MachineID:      7,
		Data:           []telemetry.MeasurementRecord{},
	}))
	router := newTestRouter(&fakeProducer{}, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s-1/messages", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response []telemetry.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 2)
}

func TestListSessionMessagesEmpty(t *testing.T) {
	router := newTestRouter(&fakeProducer{}, newFakeRepository())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/unknown/messages", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}
