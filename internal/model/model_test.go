package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationSettings_Clamp(t *testing.T) {
	got := SimulationSettings{StreamingInterval: -5, ToolLoadingTime: 99999, SimulateError: true}.Clamp()
	assert.Equal(t, SimulationSettings{StreamingInterval: MinStreamingInterval, ToolLoadingTime: MaxToolLoadingTime, SimulateError: true}, got)

	in := DefaultSimulationSettings()
	assert.Equal(t, in, in.Clamp())
}

func TestSimulationSettings_Delays(t *testing.T) {
	s := SimulationSettings{StreamingInterval: 20, ToolLoadingTime: 500}
	assert.Equal(t, 20*time.Millisecond, s.StreamingDelay())
	assert.Equal(t, 500*time.Millisecond, s.ToolDelay())
}

func TestPart_Tool(t *testing.T) {
	p := Part{Type: "tool-get_average_rating"}
	assert.True(t, p.IsTool())
	assert.Equal(t, "get_average_rating", p.ToolName())

	for _, typ := range []string{"text", "tool-", "tools"} {
		p := Part{Type: typ}
		assert.False(t, p.IsTool(), typ)
		assert.Empty(t, p.ToolName(), typ)
	}
}

func TestMessage_Text(t *testing.T) {
	m := Message{Parts: []Part{
		{Type: PartTypeText, Text: "Hello, "},
		{Type: "tool-x", Output: "ignored"},
		{Type: PartTypeText, Text: "world"},
	}}
	assert.Equal(t, "Hello, world", m.Text())
}

func TestEvent_WireShape(t *testing.T) {
	cases := []struct {
		event Event
		want  string
	}{
		{TextStart("text_1"), `{"type":"text-start","id":"text_1"}`},
		{TextDelta("text_1", " "), `{"type":"text-delta","id":"text_1","delta":" "}`},
		{ToolInputStart("call_1", "get_feedback_trends"), `{"type":"tool-input-start","toolCallId":"call_1","toolName":"get_feedback_trends"}`},
		{ToolOutputAvailable("call_1", "Error: x"), `{"type":"tool-output-available","toolCallId":"call_1","output":"Error: x"}`},
		{ErrorEvent("boom"), `{"type":"error","errorText":"boom"}`},
	}
	for _, tc := range cases {
		b, err := json.Marshal(tc.event)
		require.NoError(t, err)
		assert.JSONEq(t, tc.want, string(b))
	}
}
