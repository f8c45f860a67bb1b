package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	cfg       Config
	portfolio string
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant"
}
func (*assistCmd) Usage() string {
	return `fcs assist [-f <feed>] [<question>]

  Start an interactive session with an AI assistant that can read the fiscal
  report of the feed. Requires the GEMINI_API_KEY environment variable.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	d := defaults()
	f.StringVar(&c.cfg.Feed, "f", d.Feed, "Operations feed (JSONL format)")
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio UUID")
	f.StringVar(&c.cfg.Currency, "c", d.Currency, "Reporting currency")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg := *d
	cfg.Feed, cfg.Currency = c.cfg.Feed, strings.ToUpper(c.cfg.Currency)
	logger := newLogger(cfg.LogLevel)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	report := func(ctx context.Context) (*fiscal.Report, error) {
		return calculate(ctx, &cfg, logger, c.portfolio)
	}
	a := agent.New(os.Stdout, os.Stdin, agent.NewTrader(), agent.NewAccountant(report))
	if err := a.Run(ctx, client, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
