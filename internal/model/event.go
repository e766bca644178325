package model

import (
	"time"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
)

// EventType discriminates stream events.
type EventType string

const (
	EventTypeTextStart           EventType = "text-start"
	EventTypeTextDelta           EventType = "text-delta"
	EventTypeTextEnd             EventType = "text-end"
	EventTypeToolInputStart      EventType = "tool-input-start"
	EventTypeToolInputAvailable  EventType = "tool-input-available"
	EventTypeToolOutputAvailable EventType = "tool-output-available"

	// EventTypeError is written by the transport when a response fails
	// after the stream has been opened.
	EventTypeError EventType = "error"
)

// Event is one record of the ordered per-response event stream.
type Event struct {
	Type       EventType      `json:"type"`
	ID         string         `json:"id,omitempty"`
	Delta      string         `json:"delta,omitempty"`
	ToolCallID string         `json:"toolCallId,omitempty"`
	ToolName   string         `json:"toolName,omitempty"`
	Input      map[string]any `json:"input,omitempty"`
	Output     any            `json:"output,omitempty"`
	ErrorText  string         `json:"errorText,omitempty"`
}

func TextStart(id string) Event { return Event{Type: EventTypeTextStart, ID: id} }

func TextDelta(id, delta string) Event { return Event{Type: EventTypeTextDelta, ID: id, Delta: delta} }

func TextEnd(id string) Event { return Event{Type: EventTypeTextEnd, ID: id} }

func ToolInputStart(callID, toolName string) Event {
	return Event{Type: EventTypeToolInputStart, ToolCallID: callID, ToolName: toolName}
}

func ToolInputAvailable(callID, toolName string, input map[string]any) Event {
	return Event{Type: EventTypeToolInputAvailable, ToolCallID: callID, ToolName: toolName, Input: input}
}

func ToolOutputAvailable(callID string, output any) Event {
	return Event{Type: EventTypeToolOutputAvailable, ToolCallID: callID, Output: output}
}

func ErrorEvent(text string) Event { return Event{Type: EventTypeError, ErrorText: text} }

// Outcome labels how a simulated response ended.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeToolFailure   Outcome = "tool_failure"
	OutcomeStreamFailure Outcome = "stream_failure"
	OutcomeCancelled     Outcome = "cancelled"
	OutcomeError         Outcome = "error"
)

// ResponseSummary describes a finished response. It is published to the
// response tap and never persisted.
type ResponseSummary struct {
	ID         string             `json:"id"`
	ActionID   catalog.ActionID   `json:"action_id"`
	Outcome    Outcome            `json:"outcome"`
	Settings   SimulationSettings `json:"settings"`
	Characters int                `json:"characters"`
	ToolName   string             `json:"tool_name,omitempty"`
	ToolCallID string             `json:"tool_call_id,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	DurationMs int64              `json:"duration_ms"`
}
