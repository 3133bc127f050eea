package listen

import (
	"context"
	"fmt"

	"estd/netsock/cmd/shared"
	"estd/netsock/pkg/config"
	"estd/netsock/pkg/log"
	"estd/netsock/pkg/tcp"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the listen command. deps may be nil.
func GetCommand(deps *config.Dependencies) *cli.Command {
	return &cli.Command{
		Name:        "listen",
		Usage:       "Listen for connections",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, file, err := shared.GetSharedConfig(cmd)
			if err != nil {
				return fmt.Errorf("argument parsing: %s", err)
			}
			lCfg := shared.GetListenConfig(cmd, file)

			logger := log.NewLogger(cfg.Verbose)
			if err := shared.ValidateOrPrint(logger, cfg, lCfg); err != nil {
				return err
			}

			return run(ctx, cfg, lCfg, deps, logger)
		},
		Flags: append(shared.GetCommonFlags(), shared.GetListenFlags()...),
	}
}

func run(ctx context.Context, cfg *config.Shared, lCfg *config.Listen, deps *config.Dependencies, logger *log.Logger) error {
	srv := tcp.NewServer(tcp.ServerOptions{
		Host:        cfg.Host,
		Port:        cfg.Service(),
		Family:      cfg.Family,
		Backlog:     lCfg.Backlog,
		ReadTimeout: cfg.ReadTimeout,
		Logger:      logger,
	})
	if err := srv.Bind(ctx); err != nil {
		return fmt.Errorf("binding: %s", shared.Describe(err, cfg.Verbose))
	}
	defer srv.Close()

	logger.InfoMsg("Listening on %s\n", srv.LocalAddr())

	return serve(ctx, srv, cfg, lCfg, deps, logger)
}

// serve handles connections on a bound server until ctx is cancelled.
func serve(ctx context.Context, srv *tcp.Server, cfg *config.Shared, lCfg *config.Listen, deps *config.Dependencies, logger *log.Logger) error {
	handle := func(ctx context.Context, sc *tcp.ServerClient) error {
		defer logger.InfoMsg("Connection to %s closed\n", sc.RemoteAddr())

		if lCfg.Echo {
			return shared.Echo(ctx, sc, logger)
		}
		return shared.PipeStdio(ctx, sc, cfg, deps, logger)
	}

	if err := tcp.Serve(ctx, srv, handle, shared.NewSemaphore(lCfg), logger); err != nil {
		return fmt.Errorf("serving: %s", err)
	}

	return nil
}
