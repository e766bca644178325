package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
)

var (
	// ErrInvalidMetadata is returned for any structurally invalid request metadata.
	ErrInvalidMetadata = errors.New("invalid message metadata")

	// ErrNoUserMessage is returned when a chat request has no user-role message.
	ErrNoUserMessage = errors.New("no user message found")
)

// rawMetadata mirrors model.Metadata with pointer fields so absent
// settings can be told apart from zero values.
type rawMetadata struct {
	ActionID           *string      `json:"actionId"`
	SimulationSettings *rawSettings `json:"simulationSettings"`
}

type rawSettings struct {
	StreamingInterval *int  `json:"streamingInterval"`
	ToolLoadingTime   *int  `json:"toolLoadingTime"`
	SimulateError     *bool `json:"simulateError"`
}

// LastUserMessage returns the most recent user-role message.
func LastUserMessage(messages []model.Message) (*model.Message, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			return &messages[i], nil
		}
	}
	return nil, ErrNoUserMessage
}

// ParseMetadata validates untrusted message metadata. Absent settings take
// their defaults; out-of-range or mistyped settings are rejected.
func ParseMetadata(raw json.RawMessage) (*model.ActionRequest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: metadata is missing", ErrInvalidMetadata)
	}

	var md rawMetadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	if md.ActionID == nil {
		return nil, fmt.Errorf("%w: actionId is required", ErrInvalidMetadata)
	}
	actionID := catalog.ActionID(*md.ActionID)
	if !actionID.Valid() {
		return nil, fmt.Errorf("%w: unknown actionId %q", ErrInvalidMetadata, *md.ActionID)
	}

	settings, err := md.SimulationSettings.resolve()
	if err != nil {
		return nil, err
	}

	return &model.ActionRequest{
		ActionID: actionID,
		Settings: settings,
	}, nil
}

func (r *rawSettings) resolve() (model.SimulationSettings, error) {
	s := model.DefaultSimulationSettings()
	if r == nil {
		return s, nil
	}

	if r.StreamingInterval != nil {
		if err := ValidateRange("streamingInterval", *r.StreamingInterval, model.MinStreamingInterval, model.MaxStreamingInterval); err != nil {
			return s, err
		}
		s.StreamingInterval = *r.StreamingInterval
	}
	if r.ToolLoadingTime != nil {
		if err := ValidateRange("toolLoadingTime", *r.ToolLoadingTime, model.MinToolLoadingTime, model.MaxToolLoadingTime); err != nil {
			return s, err
		}
		s.ToolLoadingTime = *r.ToolLoadingTime
	}
	if r.SimulateError != nil {
		s.SimulateError = *r.SimulateError
	}

	return s, nil
}

// ValidateRange checks that v lies within [lo, hi].
func ValidateRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidMetadata, field, lo, hi, v)
	}
	return nil
}
