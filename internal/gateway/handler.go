package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldtel/internal/broker"
	"fieldtel/internal/constants"
	"fieldtel/internal/logger"
	"fieldtel/internal/store"
	"fieldtel/pkg/errors"
	"fieldtel/pkg/metrics"
	"fieldtel/pkg/telemetry"
)

// Handler exposes the submission endpoint and the read-only query surface.
// Submission acknowledges the caller as soon as the message is on the
// inbound topic; acceptance or rejection happens later in the pipeline and
// is never reported back here.
type Handler struct {
	producer broker.Producer
	repo     store.Repository
	logger   logger.Logger
}

func NewHandler(producer broker.Producer, repo store.Repository, log logger.Logger) *Handler {
	return &Handler{
		producer: producer,
		repo:     repo,
		logger:   log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		messages := api.Group("/messages")
		{
			messages.POST("", h.SubmitMessage)
			messages.GET("/:id", h.GetMessage)
		}

		sessions := api.Group("/sessions")
		{
			sessions.GET("/:sessionGuid/messages", h.ListSessionMessages)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

// SubmitMessage godoc
// @Summary      Submit a telemetry message
// @Description  Assigns a message ID and publishes the message to the inbound topic
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        topic    query     string                false  "Target topic (defaults to the inbound topic)"
// @Param        message  body      SubmitMessageRequest  true   "Message payload"
// @Success      200      {object}  telemetry.Message
// @Failure      400      {object}  map[string]interface{}
// @Failure      503      {object}  map[string]interface{}
// @Router       /messages [post]
func (h *Handler) SubmitMessage(c *gin.Context) {
	var req SubmitMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.GatewaySubmissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	msg := req.toMessage(uuid.NewString())
	if err := telemetry.ValidateMessage(msg); err != nil {
		metrics.GatewaySubmissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	topic := c.Query("topic")
	if topic == "" {
		topic = constants.DefaultInputTopic
	}

	if err := h.producer.Publish(c.Request.Context(), topic, msg); err != nil {
		metrics.GatewaySubmissionsTotal.WithLabelValues("publish_failure").Inc()
		h.handleError(c, errors.ErrServiceUnavailable.WithCause(err))
		return
	}

	metrics.GatewaySubmissionsTotal.WithLabelValues("published").Inc()
	h.logger.InfowCtx(c.Request.Context(), "Message submitted",
		"message_id", msg.ID,
		"session_guid", msg.SessionGUID,
		"topic", topic,
	)

	c.JSON(http.StatusOK, msg)
}

// GetMessage godoc
// @Summary      Get a message by ID
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  telemetry.Message
// @Failure      404  {object}  map[string]interface{}
// @Router       /messages/{id} [get]
func (h *Handler) GetMessage(c *gin.Context) {
	id := c.Param("id")

	msg, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			h.handleError(c, errors.ErrNotFound.WithDetail("id", id))
			return
		}
		h.handleError(c, errors.ErrInternal.WithCause(err))
		return
	}

	c.JSON(http.StatusOK, msg)
}

// ListSessionMessages godoc
// @Summary      List messages for a session
// @Tags         sessions
// @Produce      json
// @Param        sessionGuid  path      string  true  "Session GUID"
// @Success      200          {array}   telemetry.Message
// @Failure      500          {object}  map[string]interface{}
// @Router       /sessions/{sessionGuid}/messages [get]
func (h *Handler) ListSessionMessages(c *gin.Context) {
	sessionGUID := c.Param("sessionGuid")

	messages, err := h.repo.ListBySession(c.Request.Context(), sessionGUID)
	if err != nil {
		h.handleError(c, errors.ErrInternal.WithCause(err))
		return
	}

	if messages == nil {
		messages = []telemetry.Message{}
	}

	c.JSON(http.StatusOK, messages)
}
