// Package chat is a client for the feedback assistant chat endpoint. It
// keeps the conversation as a list of UI messages and applies streamed
// events to the assistant message as they arrive.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
	"github.com/capitalize-ai/feedback-simulator/pkg/logger"
)

// Status is the request lifecycle state of an Orchestrator.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSubmitted Status = "submitted"
	StatusStreaming Status = "streaming"
	StatusError     Status = "error"
)

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrUnknownAction is returned for an action that is not predefined.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNothingToRetry is returned by Retry when no user message was sent.
	ErrNothingToRetry = errors.New("no user message to retry")
	// ErrIncompleteStream is returned when the stream ends without the done sentinel.
	ErrIncompleteStream = errors.New("stream ended before completion")
)

// StreamError is a failure reported by the server, either as a non-200
// response or as an error event inside the stream.
type StreamError struct {
	StatusCode int
	Message    string
}

func (e *StreamError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

// Update is passed to the update callback after each change.
type Update struct {
	Event    model.Event
	Messages []model.Message
	Status   Status
}

// Orchestrator drives one chat conversation against the server.
type Orchestrator struct {
	endpoint string
	client   *http.Client
	logger   *logger.Logger
	onUpdate func(Update)

	mu       sync.Mutex
	messages []model.Message
	status   Status
	err      error
	settings model.SimulationSettings
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithSettings sets the initial simulation settings. They are clamped.
func WithSettings(s model.SimulationSettings) Option {
	return func(o *Orchestrator) { o.settings = s.Clamp() }
}

// OnUpdate registers fn to be called after every applied event and every
// status change. fn runs on the goroutine that called Send or Retry and
// must not call back into the Orchestrator's mutating methods.
func OnUpdate(fn func(Update)) Option {
	return func(o *Orchestrator) { o.onUpdate = fn }
}

// NewOrchestrator creates an orchestrator talking to the server at baseURL.
func NewOrchestrator(baseURL string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/chat",
		client:   http.DefaultClient,
		logger:   logger.NewNop(),
		status:   StatusIdle,
		settings: model.DefaultSimulationSettings(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetSettings replaces the settings sent with later requests. Values are
// clamped into their valid ranges.
func (o *Orchestrator) SetSettings(s model.SimulationSettings) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settings = s.Clamp()
}

// Settings returns the current simulation settings.
func (o *Orchestrator) Settings() model.SimulationSettings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// Status returns the current status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Err returns the error of the last request, if it failed.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Messages returns a copy of the conversation.
func (o *Orchestrator) Messages() []model.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Send appends a user message for the predefined action and streams the
// assistant's reply. It blocks until the stream ends.
func (o *Orchestrator) Send(ctx context.Context, actionID catalog.ActionID) error {
	action, ok := catalog.FindAction(actionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, actionID)
	}

	o.mu.Lock()
	if o.busyLocked() {
		o.mu.Unlock()
		return ErrBusy
	}

	settings := o.settings
	metadata, err := json.Marshal(model.Metadata{
		ActionID:           action.ID,
		SimulationSettings: &settings,
	})
	if err != nil {
		o.mu.Unlock()
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	o.messages = append(o.messages, model.Message{
		ID:       uuid.NewString(),
		Role:     model.RoleUser,
		Parts:    []model.Part{{Type: model.PartTypeText, Text: action.Query}},
		Metadata: metadata,
	})
	o.beginLocked()
	o.mu.Unlock()

	o.notify(model.Event{})
	return o.submit(ctx)
}

// Retry drops any assistant output after the last user message and sends
// the conversation again.
func (o *Orchestrator) Retry(ctx context.Context) error {
	o.mu.Lock()
	if o.busyLocked() {
		o.mu.Unlock()
		return ErrBusy
	}

	last := -1
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].Role == model.RoleUser {
			last = i
			break
		}
	}
	if last < 0 {
		o.mu.Unlock()
		return ErrNothingToRetry
	}
	o.messages = o.messages[:last+1]
	o.beginLocked()
	o.mu.Unlock()

	o.notify(model.Event{})
	return o.submit(ctx)
}

func (o *Orchestrator) busyLocked() bool {
	return o.status == StatusSubmitted || o.status == StatusStreaming
}

func (o *Orchestrator) beginLocked() {
	o.status = StatusSubmitted
	o.err = nil
}

func (o *Orchestrator) submit(ctx context.Context) error {
	err := o.stream(ctx)

	o.mu.Lock()
	if err != nil {
		o.status = StatusError
		o.err = err
	} else {
		o.status = StatusIdle
	}
	o.mu.Unlock()

	if err != nil {
		o.logger.Debug("chat request failed", zap.Error(err))
	}
	o.notify(model.Event{})
	return err
}

func (o *Orchestrator) stream(ctx context.Context) error {
	o.mu.Lock()
	body, err := json.Marshal(model.ChatRequest{Messages: o.messages})
	o.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	o.mu.Lock()
	o.status = StatusStreaming
	o.mu.Unlock()
	o.notify(model.Event{})

	asm := &assembler{}
	reader := newSSEReader(resp.Body)
	for {
		data, err := reader.next()
		if err == io.EOF {
			return ErrIncompleteStream
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("failed to read stream: %w", err)
		}

		if string(data) == doneSentinel {
			return nil
		}

		var event model.Event
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		if event.Type == model.EventTypeError {
			return &StreamError{StatusCode: resp.StatusCode, Message: event.ErrorText}
		}

		o.mu.Lock()
		err = o.applyLocked(asm, event)
		o.mu.Unlock()
		if err != nil {
			return err
		}
		o.notify(event)
	}
}

func (o *Orchestrator) applyLocked(asm *assembler, event model.Event) error {
	if !asm.started {
		o.messages = append(o.messages, model.Message{
			ID:   uuid.NewString(),
			Role: model.RoleAssistant,
		})
		asm.index = len(o.messages) - 1
		asm.started = true
	}
	return asm.apply(&o.messages[asm.index], event)
}

func (o *Orchestrator) notify(event model.Event) {
	if o.onUpdate == nil {
		return
	}
	o.mu.Lock()
	u := Update{Event: event, Messages: o.snapshotLocked(), Status: o.status}
	o.mu.Unlock()
	o.onUpdate(u)
}

func (o *Orchestrator) snapshotLocked() []model.Message {
	out := make([]model.Message, len(o.messages))
	for i, m := range o.messages {
		m.Parts = append([]model.Part(nil), m.Parts...)
		out[i] = m
	}
	return out
}

func responseError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &StreamError{StatusCode: resp.StatusCode, Message: msg}
}
