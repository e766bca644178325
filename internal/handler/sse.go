package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/capitalize-ai/feedback-simulator/internal/model"
)

// DoneSentinel terminates every event stream.
const DoneSentinel = "[DONE]"

// sseWriter writes stream events as SSE data lines.
type sseWriter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	failed  error
}

func newSSEWriter(w io.Writer, flusher http.Flusher) *sseWriter {
	return &sseWriter{w: w, flusher: flusher}
}

// Send implements simulator.EventSink. After the first write error every
// later call fails with the same error.
func (s *sseWriter) Send(ctx context.Context, event model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.writeData(data)
}

// Done writes the terminating sentinel.
func (s *sseWriter) Done() error {
	return s.writeData([]byte(DoneSentinel))
}

func (s *sseWriter) writeData(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed != nil {
		return s.failed
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.failed = err
		return err
	}
	s.flusher.Flush()
	return nil
}
