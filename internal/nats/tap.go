package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
)

// DefaultSubjectPrefix is the subject prefix for response summaries.
const DefaultSubjectPrefix = "feedback.responses"

// Publisher is the subset of *nats.Conn used by the tap.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ResponseTap publishes a summary of every finished response with core
// NATS. Delivery is fire-and-forget; nothing is stored.
type ResponseTap struct {
	pub    Publisher
	prefix string
}

// NewResponseTap creates a tap publishing under prefix.
func NewResponseTap(pub Publisher, prefix string) *ResponseTap {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &ResponseTap{pub: pub, prefix: prefix}
}

// Subject returns the subject for summaries of an action.
func (t *ResponseTap) Subject(actionID catalog.ActionID) string {
	return fmt.Sprintf("%s.%s", t.prefix, actionID)
}

// Publish sends summary to its action subject.
func (t *ResponseTap) Publish(ctx context.Context, summary *model.ResponseSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal response summary: %w", err)
	}

	if err := t.pub.Publish(t.Subject(summary.ActionID), data); err != nil {
		return fmt.Errorf("failed to publish response summary: %w", err)
	}
	return nil
}
