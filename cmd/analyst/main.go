// Command analyst is a conversational financial-analysis agent. It answers
// questions about company fundamentals by letting a Gemini model drive
// valuation tools and financialdatasets.ai lookups.
//
// With -prompt it answers a single question and exits; without it, it runs
// an interactive session.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	_ "github.com/valuegraph/analyst/agent/gemini"
	"github.com/valuegraph/analyst/observability"
	"github.com/valuegraph/analyst/transcript"
	"github.com/valuegraph/analyst/turn"
)

func main() {
	var (
		configFile     = flag.String("config", "", "Path to config JSON file")
		agentName      = flag.String("agent", "", "Named agent from the config's agents section")
		prompt         = flag.String("prompt", "", "Single question to answer (omit for interactive mode)")
		model          = flag.String("model", "", "Model name (overrides config)")
		systemPrompt   = flag.String("system-prompt", "", "System prompt (overrides config)")
		maxIterations  = flag.Int("max-iterations", 0, "Maximum model invocations per turn (overrides config)")
		transcriptsDir = flag.String("transcripts", "", "Directory for saved transcripts (empty disables persistence)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	// Populate the environment from .env if present; real env wins.
	godotenv.Load()

	cfg := turn.DefaultConfig()
	if *configFile != "" {
		loaded, err := turn.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *model != "" {
		cfg.Agent.Model = *model
	}
	if *systemPrompt != "" {
		cfg.SystemPrompt = *systemPrompt
	}
	if *maxIterations > 0 {
		cfg.MaxIterations = *maxIterations
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	registry, err := buildRegistry()
	if err != nil {
		log.Fatalf("Failed to build tool registry: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner, err := turn.New(ctx, &cfg, registry,
		turn.WithObserver(observability.NewSlogObserver(logger)),
	)
	if err != nil {
		log.Fatalf("Failed to create turn runner: %v", err)
	}
	if *agentName != "" {
		if err := runner.UseAgent(ctx, *agentName); err != nil {
			log.Fatalf("Failed to select agent %q: %v", *agentName, err)
		}
	}

	var store transcript.Store
	if *transcriptsDir != "" {
		store = transcript.NewFileStore(*transcriptsDir)
	}

	if *prompt != "" {
		if !submit(ctx, runner, store, *prompt) {
			os.Exit(1)
		}
		return
	}

	repl(ctx, runner, store)
}

// submit runs one turn and prints either the answer or an error banner.
// Returns false when the turn failed.
func submit(ctx context.Context, runner *turn.Runner, store transcript.Store, text string) bool {
	result, err := runner.SubmitTurn(ctx, text)

	if store != nil {
		saveTranscript(ctx, runner, store)
	}

	if err != nil {
		switch {
		case errors.Is(err, turn.ErrMaxIterations):
			fmt.Fprintf(os.Stderr, "error: the agent could not reach an answer within its iteration budget\n")
		case errors.Is(err, turn.ErrModelInvocation):
			fmt.Fprintf(os.Stderr, "error: model invocation failed, the question was not consumed: %v\n", err)
		case errors.Is(err, turn.ErrTurnCancelled):
			fmt.Fprintf(os.Stderr, "error: turn cancelled\n")
		default:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return false
	}

	fmt.Println(result.Answer)

	if len(result.ToolCalls) > 0 {
		fmt.Fprintf(os.Stderr, "\n[%d tool calls over %d rounds, %d model invocations]\n",
			len(result.ToolCalls), result.Rounds, result.Invocations)
	}
	return true
}

func repl(ctx context.Context, runner *turn.Runner, store transcript.Store) {
	fmt.Println("analyst: ask about company financials (ctrl-d to exit)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		submit(ctx, runner, store, text)

		if ctx.Err() != nil {
			break
		}
	}

	fmt.Println()
}

func saveTranscript(ctx context.Context, runner *turn.Runner, store transcript.Store) {
	sess := runner.Session()
	err := store.Save(ctx, &transcript.Transcript{
		SessionID: sess.ID(),
		SavedAt:   time.Now(),
		Messages:  sess.Messages(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save transcript: %v\n", err)
	}
}
