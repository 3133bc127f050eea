package connect

import (
	"context"
	"fmt"

	"estd/netsock/cmd/shared"
	"estd/netsock/pkg/config"
	"estd/netsock/pkg/log"
	"estd/netsock/pkg/sock"
	"estd/netsock/pkg/tcp"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the connect command. deps may be nil.
func GetCommand(deps *config.Dependencies) *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Usage:       "Connect to a remote host",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := shared.GetSharedConfig(cmd)
			if err != nil {
				return fmt.Errorf("argument parsing: %s", err)
			}

			logger := log.NewLogger(cfg.Verbose)
			if err := shared.ValidateOrPrint(logger, cfg, remote{cfg}); err != nil {
				return err
			}

			return run(ctx, cfg, deps, logger)
		},
		Flags: append(shared.GetCommonFlags(), shared.GetConnectFlags()...),
	}
}

// remote adds the checks that only apply to the connecting side.
type remote struct {
	cfg *config.Shared
}

func (r remote) Validate() []error {
	var errors []error
	if r.cfg.Host == "" {
		errors = append(errors, fmt.Errorf("a remote host is required"))
	}
	if r.cfg.Port == 0 {
		errors = append(errors, fmt.Errorf("a remote port is required"))
	}
	return errors
}

func run(ctx context.Context, cfg *config.Shared, deps *config.Dependencies, logger *log.Logger) error {
	c, err := tcp.NewClient(tcp.ClientOptions{
		Family:      cfg.Family,
		ReadTimeout: cfg.ReadTimeout,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("tcp.NewClient(): %s", shared.Describe(err, cfg.Verbose))
	}
	defer c.Close()

	st, err := c.Connect(ctx, cfg.Host, cfg.Service())
	if st != sock.StatusConnected {
		return fmt.Errorf("connecting: %s", shared.Describe(err, cfg.Verbose))
	}

	logger.InfoMsg("Connected to %s\n", c.RemoteAddr())
	defer logger.InfoMsg("Connection to %s closed\n", c.RemoteAddr())

	return shared.PipeStdio(ctx, c, cfg, deps, logger)
}
