package simulator

import "github.com/google/uuid"

// IDGenerator produces identifiers for text blocks and tool calls.
type IDGenerator interface {
	TextID() string
	ToolCallID() string
}

type uuidGenerator struct{}

func (uuidGenerator) TextID() string     { return "text_" + uuid.NewString() }
func (uuidGenerator) ToolCallID() string { return "call_" + uuid.NewString() }

// UUIDGenerator returns the default generator backed by random UUIDs.
func UUIDGenerator() IDGenerator { return uuidGenerator{} }
