package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/mmynk/debtfree/internal/cli"
	"github.com/mmynk/debtfree/pkg/logging"
)

func main() {
	logging.Setup()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
