package model

import "time"

// Simulation setting bounds and defaults, in milliseconds.
const (
	MinStreamingInterval     = 1
	MaxStreamingInterval     = 200
	DefaultStreamingInterval = 20

	MinToolLoadingTime     = 100
	MaxToolLoadingTime     = 5000
	DefaultToolLoadingTime = 500
)

// SimulationSettings tunes the pace and failure behavior of one response.
type SimulationSettings struct {
	StreamingInterval int  `json:"streamingInterval"`
	ToolLoadingTime   int  `json:"toolLoadingTime"`
	SimulateError     bool `json:"simulateError"`
}

// DefaultSimulationSettings returns the settings used when a request carries none.
func DefaultSimulationSettings() SimulationSettings {
	return SimulationSettings{
		StreamingInterval: DefaultStreamingInterval,
		ToolLoadingTime:   DefaultToolLoadingTime,
		SimulateError:     false,
	}
}

// Clamp returns s with both timings forced into their documented bounds.
func (s SimulationSettings) Clamp() SimulationSettings {
	s.StreamingInterval = clamp(s.StreamingInterval, MinStreamingInterval, MaxStreamingInterval)
	s.ToolLoadingTime = clamp(s.ToolLoadingTime, MinToolLoadingTime, MaxToolLoadingTime)
	return s
}

// StreamingDelay is the pause after each streamed character.
func (s SimulationSettings) StreamingDelay() time.Duration {
	return time.Duration(s.StreamingInterval) * time.Millisecond
}

// ToolDelay is the simulated tool execution time.
func (s SimulationSettings) ToolDelay() time.Duration {
	return time.Duration(s.ToolLoadingTime) * time.Millisecond
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
