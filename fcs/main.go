// Command fcs computes the realized capital gains and losses of a portfolio.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/fiscal/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when called by the shell to complete the command line.
	cmd.Completion(commander).Complete("fcs")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
