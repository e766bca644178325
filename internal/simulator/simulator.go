// Package simulator produces the event stream for one simulated assistant turn.
//
// A response is a single text block typed out one character at a time,
// optionally followed by one tool invocation. Two failure points can be
// injected when a request enables error simulation: FailBeforeStream aborts
// the response before anything is emitted, FailToolExecution swaps the tool
// result for a fixed error string. Events are emitted sequentially by the
// calling goroutine; cancelling the context stops emission at the next
// suspension.
package simulator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
	"github.com/capitalize-ai/feedback-simulator/pkg/logger"
)

// ToolFailureOutput is the tool output sent when tool execution fails.
const ToolFailureOutput = "Error: Simulated tool execution failure"

var (
	// ErrSimulatedFailure is returned when the response is aborted before streaming.
	ErrSimulatedFailure = errors.New("Simulated error occurred during processing")

	// ErrEmptyTemplate is returned for a template without display text.
	ErrEmptyTemplate = errors.New("template has no text")
)

// EventSink receives the events of one response in order.
type EventSink interface {
	Send(ctx context.Context, event model.Event) error
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ctx context.Context, event model.Event) error

// Send calls f.
func (f SinkFunc) Send(ctx context.Context, event model.Event) error {
	return f(ctx, event)
}

// Result summarises a run.
type Result struct {
	TextID     string
	ToolCallID string
	ToolName   string
	Characters int
	ToolFailed bool
}

// Simulator emits simulated responses.
type Simulator struct {
	injector FailureInjector
	ids      IDGenerator
	sleeper  Sleeper
	logger   *logger.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithInjector sets the failure injector.
func WithInjector(i FailureInjector) Option {
	return func(s *Simulator) { s.injector = i }
}

// WithIDGenerator sets the block and call ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Simulator) { s.ids = g }
}

// WithSleeper sets the sleeper used between events.
func WithSleeper(sl Sleeper) Option {
	return func(s *Simulator) { s.sleeper = sl }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// New creates a simulator. Unset collaborators default to a time-seeded
// fair coin, UUID identifiers, a timer sleeper and a no-op logger.
func New(opts ...Option) *Simulator {
	s := &Simulator{}
	for _, opt := range opts {
		opt(s)
	}
	if s.injector == nil {
		s.injector = NewCoinFlip(0)
	}
	if s.ids == nil {
		s.ids = UUIDGenerator()
	}
	if s.sleeper == nil {
		s.sleeper = TimerSleeper()
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	return s
}

// FullText is the template text followed by the follow-up after a blank line.
func FullText(t *catalog.Template) string {
	if t.FollowUp == "" {
		return t.Text
	}
	return t.Text + "\n\n" + t.FollowUp
}

// Run streams one response for tmpl into sink. It returns
// ErrSimulatedFailure if the pre-stream failure point fires, the context
// error if ctx is cancelled, or the first error returned by sink.
func (s *Simulator) Run(ctx context.Context, tmpl *catalog.Template, settings model.SimulationSettings, sink EventSink) (*Result, error) {
	res := &Result{}
	if tmpl == nil || tmpl.Text == "" {
		return res, ErrEmptyTemplate
	}

	text := FullText(tmpl)

	if settings.SimulateError && s.injector.ShouldFail(FailBeforeStream) {
		s.logger.Debug("injecting pre-stream failure")
		return res, ErrSimulatedFailure
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.TextID = s.ids.TextID()
	if err := sink.Send(ctx, model.TextStart(res.TextID)); err != nil {
		return res, fmt.Errorf("send text-start: %w", err)
	}

	delay := settings.StreamingDelay()
	for _, ch := range text {
		if err := sink.Send(ctx, model.TextDelta(res.TextID, string(ch))); err != nil {
			return res, fmt.Errorf("send text-delta: %w", err)
		}
		res.Characters++
		if err := s.sleeper.Sleep(ctx, delay); err != nil {
			return res, err
		}
	}

	if err := sink.Send(ctx, model.TextEnd(res.TextID)); err != nil {
		return res, fmt.Errorf("send text-end: %w", err)
	}

	inv := tmpl.ToolInvocation
	if inv == nil {
		return res, nil
	}

	res.ToolCallID = s.ids.ToolCallID()
	res.ToolName = inv.ToolName

	if err := sink.Send(ctx, model.ToolInputStart(res.ToolCallID, inv.ToolName)); err != nil {
		return res, fmt.Errorf("send tool-input-start: %w", err)
	}
	if err := sink.Send(ctx, model.ToolInputAvailable(res.ToolCallID, inv.ToolName, inv.Args)); err != nil {
		return res, fmt.Errorf("send tool-input-available: %w", err)
	}

	if err := s.sleeper.Sleep(ctx, settings.ToolDelay()); err != nil {
		return res, err
	}

	output := inv.Result
	if settings.SimulateError && s.injector.ShouldFail(FailToolExecution) {
		s.logger.Debug("injecting tool execution failure", zap.String("tool", inv.ToolName))
		output = ToolFailureOutput
		res.ToolFailed = true
	}

	if err := sink.Send(ctx, model.ToolOutputAvailable(res.ToolCallID, output)); err != nil {
		return res, fmt.Errorf("send tool-output-available: %w", err)
	}

	s.logger.Debug("tool invocation completed",
		zap.String("tool", inv.ToolName),
		zap.String("tool_call_id", res.ToolCallID),
		zap.Bool("failed", res.ToolFailed),
	)

	return res, nil
}
