package main

import (
	"context"
	"os"

	"estd/netsock/cmd/connect"
	"estd/netsock/cmd/listen"
	"estd/netsock/cmd/shared"
	"estd/netsock/cmd/version"
	"estd/netsock/pkg/log"
	"estd/netsock/pkg/platform"

	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	logger := log.NewLogger(false)

	ctx, stop := shared.NotifyContext(context.Background())
	defer stop()

	subsystem, err := platform.Startup()
	if err != nil {
		logger.ErrorMsg("starting socket subsystem: %s\n", err)
		return 1
	}
	defer subsystem.Close()

	if err := newCommand().Run(ctx, args); err != nil {
		logger.ErrorMsg("%s\n", err)
		return 1
	}
	return 0
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "netsock",
		Usage: "netcat-like tool on a portable TCP socket layer",
		Commands: []*cli.Command{
			connect.GetCommand(nil),
			listen.GetCommand(nil),
			version.GetCommand(),
		},
	}
}
