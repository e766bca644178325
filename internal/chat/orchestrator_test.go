package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
	"github.com/capitalize-ai/feedback-simulator/internal/handler"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
	"github.com/capitalize-ai/feedback-simulator/internal/service"
	"github.com/capitalize-ai/feedback-simulator/internal/simulator"
	"github.com/capitalize-ai/feedback-simulator/pkg/logger"
)

type noSleep struct{}

func (noSleep) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// failFirst fails the pre-stream point on its first call only.
type failFirst struct {
	mu    sync.Mutex
	fired bool
}

func (f *failFirst) ShouldFail(point simulator.FailurePoint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if point != simulator.FailBeforeStream || f.fired {
		return false
	}
	f.fired = true
	return true
}

func newSimServer(t *testing.T, injector simulator.FailureInjector) *httptest.Server {
	t.Helper()
	log := logger.NewNop()
	sim := simulator.New(simulator.WithInjector(injector), simulator.WithSleeper(noSleep{}))
	svc := service.NewChatService(sim, nil, log)
	srv := httptest.NewServer(handler.NewRouter(handler.RouterConfig{
		Chat:           handler.NewChatHandler(svc, log),
		Health:         handler.NewHealthHandler(nil),
		Logger:         log,
		AllowedOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeEvents(w http.ResponseWriter, events ...string) {
	for _, e := range events {
		fmt.Fprintf(w, "data: %s\n\n", e)
	}
	w.(http.Flusher).Flush()
}

func assistantText(m model.Message) string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == model.PartTypeText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// jsonEqual compares two values by their JSON encoding.
func jsonEqual(t *testing.T, want, got any) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(w), string(g))
}

func TestSend_ReconstructsResponse(t *testing.T) {
	srv := newSimServer(t, simulator.Force())

	var (
		mu       sync.Mutex
		statuses []Status
		events   int
	)
	o := NewOrchestrator(srv.URL,
		WithSettings(model.SimulationSettings{StreamingInterval: 1, ToolLoadingTime: 100}),
		OnUpdate(func(u Update) {
			mu.Lock()
			defer mu.Unlock()
			if len(statuses) == 0 || statuses[len(statuses)-1] != u.Status {
				statuses = append(statuses, u.Status)
			}
			if u.Event.Type != "" {
				events++
			}
		}),
	)

	for _, id := range catalog.IDs() {
		require.NoError(t, o.Send(context.Background(), id), id)
	}
	assert.Equal(t, StatusIdle, o.Status())
	assert.NoError(t, o.Err())

	msgs := o.Messages()
	require.Len(t, msgs, 2*len(catalog.IDs()))
	for i, id := range catalog.IDs() {
		user, assistant := msgs[2*i], msgs[2*i+1]
		action, _ := catalog.FindAction(id)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.Equal(t, action.Query, user.Text())
		assert.Equal(t, model.RoleAssistant, assistant.Role)

		tmpl, _ := catalog.Lookup(id)
		require.Len(t, assistant.Parts, 2, id)
		assert.Equal(t, simulator.FullText(tmpl), assistantText(assistant))
		assert.Equal(t, model.StateDone, assistant.Parts[0].State)

		tool := assistant.Parts[1]
		require.True(t, tool.IsTool())
		assert.Equal(t, tmpl.ToolInvocation.ToolName, tool.ToolName())
		assert.Equal(t, model.StateOutputAvailable, tool.State)
		assert.True(t, strings.HasPrefix(tool.ToolCallID, "call_"))
		jsonEqual(t, tmpl.ToolInvocation.Args, tool.Input)
		jsonEqual(t, tmpl.ToolInvocation.Result, tool.Output)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{
		StatusSubmitted, StatusStreaming, StatusIdle,
		StatusSubmitted, StatusStreaming, StatusIdle,
		StatusSubmitted, StatusStreaming, StatusIdle,
		StatusSubmitted, StatusStreaming, StatusIdle,
	}, statuses)
	assert.Greater(t, events, 4*len(catalog.IDs()))
}

func TestSend_PreStreamFailureThenRetry(t *testing.T) {
	srv := newSimServer(t, &failFirst{})
	o := NewOrchestrator(srv.URL, WithSettings(model.SimulationSettings{
		StreamingInterval: 1, ToolLoadingTime: 100, SimulateError: true,
	}))

	err := o.Send(context.Background(), catalog.ActionAvgRating)
	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, simulator.ErrSimulatedFailure.Error(), streamErr.Message)
	assert.Equal(t, StatusError, o.Status())
	assert.Equal(t, err, o.Err())
	require.Len(t, o.Messages(), 1)

	require.NoError(t, o.Retry(context.Background()))
	assert.Equal(t, StatusIdle, o.Status())
	assert.NoError(t, o.Err())

	msgs := o.Messages()
	require.Len(t, msgs, 2)
	tmpl, _ := catalog.Lookup(catalog.ActionAvgRating)
	assert.Equal(t, simulator.FullText(tmpl), assistantText(msgs[1]))
}

func TestSend_ToolFailureIsNotAnError(t *testing.T) {
	srv := newSimServer(t, simulator.Force(simulator.FailToolExecution))
	o := NewOrchestrator(srv.URL, WithSettings(model.SimulationSettings{SimulateError: true}))

	require.NoError(t, o.Send(context.Background(), catalog.ActionSentimentDist))
	msgs := o.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, simulator.ToolFailureOutput, msgs[1].Parts[1].Output)
}

func TestSend_SendsMetadata(t *testing.T) {
	requests := make(chan model.ChatRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests <- req
		writeEvents(w, doneSentinel)
	}))
	defer srv.Close()

	o := NewOrchestrator(srv.URL + "/")
	o.SetSettings(model.SimulationSettings{StreamingInterval: 0, ToolLoadingTime: 9000, SimulateError: true})
	require.NoError(t, o.Send(context.Background(), catalog.ActionFeedbackChart))

	got := <-requests
	require.Len(t, got.Messages, 1)
	var meta model.Metadata
	require.NoError(t, json.Unmarshal(got.Messages[0].Metadata, &meta))
	assert.Equal(t, catalog.ActionFeedbackChart, meta.ActionID)
	require.NotNil(t, meta.SimulationSettings)
	assert.Equal(t, model.SimulationSettings{
		StreamingInterval: model.MinStreamingInterval,
		ToolLoadingTime:   model.MaxToolLoadingTime,
		SimulateError:     true,
	}, *meta.SimulationSettings)
	assert.Equal(t, "Show feedback trends over time", got.Messages[0].Text())
}

func TestSend_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Invalid action"}`)
	}))
	defer srv.Close()

	o := NewOrchestrator(srv.URL)
	err := o.Send(context.Background(), catalog.ActionAvgRating)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, http.StatusBadRequest, streamErr.StatusCode)
	assert.Equal(t, "Invalid action", streamErr.Message)
	assert.Equal(t, "server returned 400: Invalid action", err.Error())
	assert.Equal(t, StatusError, o.Status())
}

func TestSend_UnknownAction(t *testing.T) {
	o := NewOrchestrator("http://127.0.0.1:0")
	assert.ErrorIs(t, o.Send(context.Background(), "make-coffee"), ErrUnknownAction)
	assert.Equal(t, StatusIdle, o.Status())
	assert.Empty(t, o.Messages())
}

func TestSend_IncompleteStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, `{"type":"text-start","id":"text_1"}`, `{"type":"text-delta","id":"text_1","delta":"T"}`)
	}))
	defer srv.Close()

	o := NewOrchestrator(srv.URL)
	assert.ErrorIs(t, o.Send(context.Background(), catalog.ActionAvgRating), ErrIncompleteStream)
	assert.Equal(t, StatusError, o.Status())

	msgs := o.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "T", assistantText(msgs[1]))
	assert.Equal(t, model.StateStreaming, msgs[1].Parts[0].State)
}

func TestSend_UnknownBlockIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, `{"type":"text-delta","id":"text_9","delta":"x"}`, doneSentinel)
	}))
	defer srv.Close()

	o := NewOrchestrator(srv.URL)
	err := o.Send(context.Background(), catalog.ActionAvgRating)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown block")
}

func TestRetry_DropsPartialAssistant(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		var req model.ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1, "retry must not resend partial output")

		if n == 1 {
			writeEvents(w,
				`{"type":"text-start","id":"text_1"}`,
				`{"type":"text-delta","id":"text_1","delta":"Pa"}`,
				`{"type":"error","errorText":"boom"}`,
				doneSentinel,
			)
			return
		}
		writeEvents(w,
			`{"type":"text-start","id":"text_2"}`,
			`{"type":"text-delta","id":"text_2","delta":"OK"}`,
			`{"type":"text-end","id":"text_2"}`,
			doneSentinel,
		)
	}))
	defer srv.Close()

	o := NewOrchestrator(srv.URL)
	err := o.Send(context.Background(), catalog.ActionRecentFeedback)
	require.EqualError(t, err, "boom")
	require.Len(t, o.Messages(), 2)

	require.NoError(t, o.Retry(context.Background()))
	msgs := o.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "OK", assistantText(msgs[1]))
}

func TestRetry_NothingToRetry(t *testing.T) {
	o := NewOrchestrator("http://127.0.0.1:0")
	assert.ErrorIs(t, o.Retry(context.Background()), ErrNothingToRetry)
}

func TestBusyAndCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, `{"type":"text-start","id":"text_1"}`)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	o := NewOrchestrator(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- o.Send(ctx, catalog.ActionAvgRating) }()

	require.Eventually(t, func() bool {
		return len(o.Messages()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusStreaming, o.Status())

	assert.ErrorIs(t, o.Send(context.Background(), catalog.ActionAvgRating), ErrBusy)
	assert.ErrorIs(t, o.Retry(context.Background()), ErrBusy)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("send did not return after cancel")
	}
	assert.Equal(t, StatusError, o.Status())
}

func TestSetSettings_Clamps(t *testing.T) {
	o := NewOrchestrator("http://127.0.0.1:0")
	assert.Equal(t, model.DefaultSimulationSettings(), o.Settings())

	o.SetSettings(model.SimulationSettings{StreamingInterval: 1000, ToolLoadingTime: 1})
	assert.Equal(t, model.SimulationSettings{
		StreamingInterval: model.MaxStreamingInterval,
		ToolLoadingTime:   model.MinToolLoadingTime,
	}, o.Settings())
}

func TestMessages_ReturnsCopy(t *testing.T) {
	srv := newSimServer(t, simulator.Force())
	o := NewOrchestrator(srv.URL, WithSettings(model.SimulationSettings{StreamingInterval: 1, ToolLoadingTime: 100}))
	require.NoError(t, o.Send(context.Background(), catalog.ActionAvgRating))

	msgs := o.Messages()
	msgs[1].Parts[0].Text = "changed"
	assert.NotEqual(t, "changed", o.Messages()[1].Parts[0].Text)
}
