package chat

import (
	"fmt"

	"github.com/capitalize-ai/feedback-simulator/internal/model"
)

// assembler builds one assistant message from stream events.
type assembler struct {
	started bool
	index   int // position of the assistant message in the conversation

	textParts map[string]int
	toolParts map[string]int
}

// apply folds event into msg. Unknown event types are ignored.
func (a *assembler) apply(msg *model.Message, event model.Event) error {
	if a.textParts == nil {
		a.textParts = make(map[string]int)
		a.toolParts = make(map[string]int)
	}

	switch event.Type {
	case model.EventTypeTextStart:
		msg.Parts = append(msg.Parts, model.Part{Type: model.PartTypeText, State: model.StateStreaming})
		a.textParts[event.ID] = len(msg.Parts) - 1

	case model.EventTypeTextDelta:
		i, ok := a.textParts[event.ID]
		if !ok {
			return fmt.Errorf("text-delta for unknown block %q", event.ID)
		}
		msg.Parts[i].Text += event.Delta

	case model.EventTypeTextEnd:
		i, ok := a.textParts[event.ID]
		if !ok {
			return fmt.Errorf("text-end for unknown block %q", event.ID)
		}
		msg.Parts[i].State = model.StateDone
		delete(a.textParts, event.ID)

	case model.EventTypeToolInputStart:
		msg.Parts = append(msg.Parts, model.Part{
			Type:       model.PartTypeToolPrefix + event.ToolName,
			State:      model.StateInputStreaming,
			ToolCallID: event.ToolCallID,
		})
		a.toolParts[event.ToolCallID] = len(msg.Parts) - 1

	case model.EventTypeToolInputAvailable:
		i, ok := a.toolParts[event.ToolCallID]
		if !ok {
			// Input may arrive without a preceding start.
			msg.Parts = append(msg.Parts, model.Part{
				Type:       model.PartTypeToolPrefix + event.ToolName,
				ToolCallID: event.ToolCallID,
			})
			i = len(msg.Parts) - 1
			a.toolParts[event.ToolCallID] = i
		}
		msg.Parts[i].Input = event.Input
		msg.Parts[i].State = model.StateInputAvailable

	case model.EventTypeToolOutputAvailable:
		i, ok := a.toolParts[event.ToolCallID]
		if !ok {
			return fmt.Errorf("tool output for unknown call %q", event.ToolCallID)
		}
		msg.Parts[i].Output = event.Output
		msg.Parts[i].State = model.StateOutputAvailable
	}
	return nil
}
