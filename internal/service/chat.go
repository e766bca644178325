// Package service provides business logic for the feedback assistant.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
	"github.com/capitalize-ai/feedback-simulator/internal/simulator"
	"github.com/capitalize-ai/feedback-simulator/pkg/logger"
	"github.com/capitalize-ai/feedback-simulator/pkg/metrics"
	"github.com/capitalize-ai/feedback-simulator/pkg/tracing"
)

// ErrTemplateNotFound is returned when a valid action has no template.
var ErrTemplateNotFound = errors.New("template not found")

// ResponsePublisher receives a summary of every finished response.
type ResponsePublisher interface {
	Publish(ctx context.Context, summary *model.ResponseSummary) error
}

// NopPublisher discards summaries.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, *model.ResponseSummary) error { return nil }

// TemplateLookup resolves an action to its response template.
type TemplateLookup func(id catalog.ActionID) (*catalog.Template, bool)

// ChatService turns validated action requests into simulated responses.
type ChatService struct {
	simulator *simulator.Simulator
	publisher ResponsePublisher
	lookup    TemplateLookup
	logger    *logger.Logger
}

// Option configures a ChatService.
type Option func(*ChatService)

// WithTemplateLookup replaces the catalog lookup.
func WithTemplateLookup(fn TemplateLookup) Option {
	return func(s *ChatService) { s.lookup = fn }
}

// NewChatService creates a new chat service.
func NewChatService(
	sim *simulator.Simulator,
	publisher ResponsePublisher,
	log *logger.Logger,
	opts ...Option,
) *ChatService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	s := &ChatService{
		simulator: sim,
		publisher: publisher,
		lookup:    catalog.Lookup,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the template for req. It runs before the stream is
// opened so a missing template can still change the response status.
func (s *ChatService) Resolve(req *model.ActionRequest) (*catalog.Template, error) {
	tmpl, ok := s.lookup(req.ActionID)
	if !ok || tmpl == nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, req.ActionID)
	}
	return tmpl, nil
}

// Stream runs the simulated response for req into sink and returns its summary.
func (s *ChatService) Stream(
	ctx context.Context,
	req *model.ActionRequest,
	tmpl *catalog.Template,
	sink simulator.EventSink,
) (*model.ResponseSummary, error) {
	ctx, span := tracing.Tracer().Start(ctx, "chat.stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("action.id", string(req.ActionID)),
		attribute.Int("settings.streaming_interval_ms", req.Settings.StreamingInterval),
		attribute.Int("settings.tool_loading_time_ms", req.Settings.ToolLoadingTime),
		attribute.Bool("settings.simulate_error", req.Settings.SimulateError),
	)

	start := time.Now()
	res, err := s.simulator.Run(ctx, tmpl, req.Settings, sink)
	duration := time.Since(start)

	summary := &model.ResponseSummary{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ActionID:   req.ActionID,
		Outcome:    outcomeOf(res, err),
		Settings:   req.Settings,
		StartedAt:  start,
		DurationMs: duration.Milliseconds(),
	}
	if res != nil {
		summary.Characters = res.Characters
		summary.ToolName = res.ToolName
		summary.ToolCallID = res.ToolCallID
	}

	span.SetAttributes(
		attribute.String("response.outcome", string(summary.Outcome)),
		attribute.Int("response.characters", summary.Characters),
	)

	switch summary.Outcome {
	case model.OutcomeStreamFailure:
		metrics.RecordInjectedFailure(string(simulator.FailBeforeStream))
	case model.OutcomeToolFailure:
		metrics.RecordInjectedFailure(string(simulator.FailToolExecution))
	}
	metrics.RecordSimulatedResponse(string(req.ActionID), string(summary.Outcome), duration.Seconds(), summary.Characters)

	fields := []zap.Field{
		zap.String("action_id", string(req.ActionID)),
		zap.String("outcome", string(summary.Outcome)),
		zap.Int("characters", summary.Characters),
		zap.Duration("duration", duration),
	}
	switch summary.Outcome {
	case model.OutcomeError:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("simulated response failed", append(fields, zap.Error(err))...)
	case model.OutcomeCancelled:
		s.logger.Info("simulated response cancelled by client", fields...)
	default:
		s.logger.Info("simulated response finished", fields...)
	}

	// The request context may already be cancelled; the summary still goes out.
	if pubErr := s.publisher.Publish(context.WithoutCancel(ctx), summary); pubErr != nil {
		metrics.TapPublishErrorsTotal.Inc()
		s.logger.Warn("failed to publish response summary", zap.Error(pubErr))
	}

	if err != nil {
		return summary, err
	}
	return summary, nil
}

func outcomeOf(res *simulator.Result, err error) model.Outcome {
	switch {
	case errors.Is(err, simulator.ErrSimulatedFailure):
		return model.OutcomeStreamFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return model.OutcomeCancelled
	case err != nil:
		return model.OutcomeError
	case res != nil && res.ToolFailed:
		return model.OutcomeToolFailure
	default:
		return model.OutcomeSuccess
	}
}
