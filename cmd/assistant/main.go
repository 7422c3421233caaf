// Command assistant is the interactive terminal front end of the customer feedback assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quickcommerce/insights/internal/bootstrap"
	"github.com/quickcommerce/insights/internal/config"
	"github.com/quickcommerce/insights/internal/observability"
	"github.com/quickcommerce/insights/internal/service"
	"github.com/quickcommerce/insights/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	logPath := flag.String("log", "assistant.log", "file that receives log records")
	topK := flag.Int("top-k", service.DefaultAssistantTopK, "number of feedback entries used per answer")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)

		return 1
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open log file:", err)

		return 1
	}
	defer logFile.Close()

	observability.SetupLoggingTo(logFile, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "Loading and embedding customer feedback...")

	assistant, entries, err := bootstrap.BuildAssistant(ctx, cfg, nil)
	if err != nil {
		slog.Error("failed to build assistant", "error", err)
		fmt.Fprintln(os.Stderr, "failed to build assistant:", err)

		return 1
	}

	if assistant == nil {
		fmt.Fprintln(os.Stderr, "assistant unavailable: set EMBEDDING_API_KEY (or OPENAI_API_KEY) and GROQ_API_KEY")

		return 1
	}

	summary := fmt.Sprintf("%d feedback entries indexed from %s", entries, cfg.FeedbackPath)

	p := tea.NewProgram(tui.New(assistant, service.ClampTopK(*topK), summary), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		slog.Error("tui exited with error", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)

		return 1
	}

	return 0
}
