// Package main is a terminal client that runs one predefined action
// against the API server and prints the streamed reply.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
	"github.com/capitalize-ai/feedback-simulator/internal/chat"
	"github.com/capitalize-ai/feedback-simulator/internal/model"
	"github.com/capitalize-ai/feedback-simulator/pkg/logger"
)

var (
	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	toolStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API server base URL")
	action := flag.String("action", string(catalog.ActionAvgRating), "action to run")
	list := flag.Bool("list", false, "list the predefined actions and exit")
	interval := flag.Int("interval", model.DefaultStreamingInterval, "milliseconds between characters")
	toolTime := flag.Int("tool-time", model.DefaultToolLoadingTime, "simulated tool latency in milliseconds")
	simulateError := flag.Bool("simulate-error", false, "let the server inject failures")
	retries := flag.Int("retries", 0, "retries after a failed response")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *list {
		for _, a := range catalog.Actions() {
			fmt.Printf("%-16s %-20s %s\n", a.ID, a.Label, dimStyle.Render(string(a.Complexity)))
		}
		return
	}

	log := logger.NewNop()
	if *verbose {
		l, err := logger.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
		log = l
		defer log.Sync()
	}

	a, ok := catalog.FindAction(catalog.ActionID(*action))
	if !ok {
		fmt.Fprintln(os.Stderr, errorStyle.Render("unknown action "+*action+"; use -list"))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := chat.NewOrchestrator(*baseURL,
		chat.WithLogger(log),
		chat.WithSettings(model.SimulationSettings{
			StreamingInterval: *interval,
			ToolLoadingTime:   *toolTime,
			SimulateError:     *simulateError,
		}),
		chat.OnUpdate(render),
	)

	fmt.Println(userStyle.Render("> " + a.Query))

	err := orch.Send(ctx, a.ID)
	for attempt := 0; err != nil && attempt < *retries && ctx.Err() == nil; attempt++ {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf("retrying (%d/%d)", attempt+1, *retries)))
		err = orch.Retry(ctx)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, dimStyle.Render("cancelled"))
			os.Exit(130)
		}
		log.Debug("request failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// render prints each event as it is applied.
func render(u chat.Update) {
	e := u.Event
	switch e.Type {
	case model.EventTypeTextDelta:
		fmt.Print(e.Delta)
	case model.EventTypeTextEnd:
		fmt.Println()
	case model.EventTypeToolInputAvailable:
		args, _ := json.Marshal(e.Input)
		fmt.Println(toolStyle.Render(fmt.Sprintf("[%s] %s", e.ToolName, args)))
	case model.EventTypeToolOutputAvailable:
		out, err := json.MarshalIndent(e.Output, "", "  ")
		if err != nil {
			out = []byte(fmt.Sprint(e.Output))
		}
		fmt.Println(toolStyle.Render(string(out)))
	}
}
