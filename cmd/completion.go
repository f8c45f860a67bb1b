package cmd

import (
	"flag"

	"github.com/etnz/fiscal/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors completes flag values by flag name.
var flagPredictors = map[string]complete.Predictor{
	"config": predict.Files("*.toml"),
	"f":      predict.Files("*.jsonl"),
	"o":      predict.Files("*.jsonl"),
	"rates":  predict.Files("*.jsonl"),
	"db":     predict.Files("*.db"),
	"c":      predict.Set{"EUR", "USD", "GBP", "CHF", "JPY"},
	"source": predict.Set{SourceNone, SourceFile, SourceSQLite, SourceEODHD, SourceYahoo},
	"store":  predict.Set{SourceFile, SourceSQLite},
}

// Completion returns the shell completion of the commands registered in c.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagsOf(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		fs := flag.NewFlagSet(sc.Name(), flag.ContinueOnError)
		sc.SetFlags(fs)
		cmd := &complete.Command{Flags: flagsOf(fs)}
		if sc.Name() == "topic" {
			if topics, err := docs.GetAllTopics(); err == nil {
				cmd.Args = predict.Set(topics)
			}
		}
		root.Sub[sc.Name()] = cmd
	})
	return root
}

func flagsOf(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		flags[f.Name] = predict.Nothing
	})
	return flags
}
