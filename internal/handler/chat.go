// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/capitalize-ai/feedback-simulator/internal/middleware"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
	"github.com/capitalize-ai/feedback-simulator/internal/service"
	"github.com/capitalize-ai/feedback-simulator/internal/simulator"
	"github.com/capitalize-ai/feedback-simulator/pkg/logger"
	"github.com/capitalize-ai/feedback-simulator/pkg/metrics"
)

// genericStreamError is sent in-band for failures that are not simulated.
const genericStreamError = "An error occurred."

// ChatHandler handles the streaming chat endpoint.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Chat handles POST /api/chat
// The last user message must carry {actionId, simulationSettings?} metadata.
// The response is a stream of UI message events over SSE.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req model.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userMsg, err := middleware.LastUserMessage(req.Messages)
	if err != nil {
		h.logger.Warn("chat request without user message", zap.String("correlation_id", correlationID))
		writeError(w, http.StatusBadRequest, "No user message found")
		return
	}

	actionReq, err := middleware.ParseMetadata(userMsg.Metadata)
	if err != nil {
		h.logger.Warn("invalid message metadata",
			zap.String("correlation_id", correlationID),
			zap.String("message_id", userMsg.ID),
			zap.Error(err),
		)
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	log := h.logger.WithRequest(correlationID, string(actionReq.ActionID))

	tmpl, err := h.service.Resolve(actionReq)
	if err != nil {
		log.Error("no template for action", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Template not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	log.Debug("processing action",
		zap.Int("streaming_interval_ms", actionReq.Settings.StreamingInterval),
		zap.Int("tool_loading_time_ms", actionReq.Settings.ToolLoadingTime),
		zap.Bool("simulate_error", actionReq.Settings.SimulateError),
	)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.Header().Set("X-Vercel-AI-UI-Message-Stream", "v1")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Track active connection
	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sink := newSSEWriter(w, flusher)

	if _, err := h.service.Stream(ctx, actionReq, tmpl, sink); err != nil {
		if ctx.Err() != nil {
			// Client disconnected; nothing more can be written.
			return
		}
		msg := genericStreamError
		if errors.Is(err, simulator.ErrSimulatedFailure) {
			msg = err.Error()
		}
		sink.Send(ctx, model.ErrorEvent(msg))
	}

	sink.Done()
}
