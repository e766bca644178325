// Package model defines the wire types shared by the chat server and client.
package model

import (
	"encoding/json"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// PartType discriminates message parts.
const (
	PartTypeText = "text"
	// PartTypeToolPrefix prefixes tool parts, e.g. "tool-get_average_rating".
	PartTypeToolPrefix = "tool-"
)

// Part states.
const (
	StateStreaming       = "streaming"
	StateDone            = "done"
	StateInputStreaming  = "input-streaming"
	StateInputAvailable  = "input-available"
	StateOutputAvailable = "output-available"
)

// Part is one piece of a chat message: a text block or a tool call.
type Part struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	State      string `json:"state,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
	Input      any    `json:"input,omitempty"`
	Output     any    `json:"output,omitempty"`
}

// IsTool reports whether the part is a tool call.
func (p Part) IsTool() bool {
	return len(p.Type) > len(PartTypeToolPrefix) && p.Type[:len(PartTypeToolPrefix)] == PartTypeToolPrefix
}

// ToolName returns the tool name for a tool part.
func (p Part) ToolName() string {
	if !p.IsTool() {
		return ""
	}
	return p.Type[len(PartTypeToolPrefix):]
}

// Message represents a chat message.
type Message struct {
	ID       string          `json:"id"`
	Role     Role            `json:"role"`
	Parts    []Part          `json:"parts"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Text concatenates the message's text parts.
func (m *Message) Text() string {
	var s string
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			s += p.Text
		}
	}
	return s
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// Metadata is carried by the user message that triggers an action.
type Metadata struct {
	ActionID           catalog.ActionID    `json:"actionId"`
	SimulationSettings *SimulationSettings `json:"simulationSettings,omitempty"`
}

// ActionRequest is validated request metadata with settings defaulted.
type ActionRequest struct {
	ActionID catalog.ActionID
	Settings SimulationSettings
}
