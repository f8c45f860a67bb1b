package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/fiscal"
	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type fmtCmd struct {
	feed   string
	output string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the operations feed into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `fcs fmt [-f <feed>] [-o <file>]

  Validates and formats the operations feed. This command reads all
  operations, validates them, assigns an id to operations without one, sorts
  them by time, and writes them back in a canonical JSONL format.
  Operations at the same time keep their order.

Usage Examples:
# Formats the default feed in place.
$ fcs fmt

# Prints the formatted feed.
$ fcs fmt -o -
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.feed, "f", defaults().Feed, "Operations feed to format")
	f.StringVar(&p.output, "o", "", "Output file, '-' for stdout. Formats in place by default.")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ops, err := DecodeFeed(p.feed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fiscal.ValidateOperations(ops); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid feed %q:\n%v\n", p.feed, err)
		return subcommands.ExitFailure
	}
	ops = formatOperations(ops, uuid.NewString)

	output := p.output
	if output == "" {
		output = p.feed
	}
	if output == "-" {
		w := bufio.NewWriter(os.Stdout)
		if err := fiscal.EncodeOperations(w, ops); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := saveFeed(output, ops); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted feed %q: %v\n", output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ Successfully formatted %d operations in %s.\n", len(ops), output)
	return subcommands.ExitSuccess
}

// formatOperations returns ops sorted by time, with an id for every
// operation. Operations at the same time keep their feed order.
func formatOperations(ops []fiscal.Operation, newID func() string) []fiscal.Operation {
	ops = slices.Clone(ops)
	for i := range ops {
		if ops[i].ID == "" {
			ops[i].ID = newID()
		}
	}
	slices.SortStableFunc(ops, func(a, b fiscal.Operation) int { return a.Time.Compare(b.Time) })
	return ops
}

// saveFeed writes the feed through a temporary file, so that the feed is
// never left half written.
func saveFeed(path string, ops []fiscal.Operation) (err error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err = fiscal.EncodeOperations(w, ops); err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
