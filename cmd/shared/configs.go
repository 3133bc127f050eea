package shared

import (
	"fmt"

	"estd/netsock/pkg/config"
	"estd/netsock/pkg/log"
	"estd/netsock/pkg/platform"

	"github.com/urfave/cli/v3"
)

// GetSharedConfig builds the common settings from the transport argument,
// the config file and the command line flags, in increasing precedence.
// It returns the loaded file, if any, so that commands can apply their own
// sections of it.
func GetSharedConfig(cmd *cli.Command) (*config.Shared, *config.File, error) {
	if cmd.Args().Len() != 1 {
		return nil, nil, fmt.Errorf("expected exactly one transport argument, got %d", cmd.Args().Len())
	}

	host, port, err := ParseTransport(cmd.Args().First())
	if err != nil {
		return nil, nil, err
	}

	cfg := &config.Shared{
		Host:        host,
		Port:        port,
		ReadTimeout: cmd.Duration(ReadTimeoutFlag),
		LogFile:     cmd.String(LogFileFlag),
		Verbose:     cmd.Bool(VerboseFlag),
	}

	switch {
	case cmd.Bool(IPv4Flag) && cmd.Bool(IPv6Flag):
		return nil, nil, fmt.Errorf("'--%s' and '--%s' are mutually exclusive", IPv4Flag, IPv6Flag)
	case cmd.Bool(IPv4Flag):
		cfg.Family = platform.FamilyIPv4
	case cmd.Bool(IPv6Flag):
		cfg.Family = platform.FamilyIPv6
	}

	var file *config.File
	if path := cmd.String(ConfigFlag); path != "" {
		file, err = config.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := file.ApplyShared(cfg, isSet(cmd, host)); err != nil {
		return nil, nil, err
	}

	return cfg, file, nil
}

// GetListenConfig builds the listen settings from flags and the config file.
func GetListenConfig(cmd *cli.Command, file *config.File) *config.Listen {
	cfg := &config.Listen{
		Backlog:     int(cmd.Int(BacklogFlag)),
		MaxConns:    int(cmd.Int(MaxConnsFlag)),
		SlotTimeout: cmd.Duration(SlotTimeoutFlag),
		Echo:        cmd.Bool(EchoFlag),
	}

	file.ApplyListen(cfg, isSet(cmd, ""))

	return cfg
}

// isSet maps config keys to "given on the command line". A host in the
// transport argument counts as set.
func isSet(cmd *cli.Command, host string) config.IsSet {
	return func(key string) bool {
		switch key {
		case config.KeyHost:
			return host != ""
		case config.KeyFamily:
			return cmd.IsSet(IPv4Flag) || cmd.IsSet(IPv6Flag)
		default:
			return cmd.IsSet(key)
		}
	}
}

// ValidateOrPrint validates cfgs and prints every error. It returns a
// non-nil error if there was any.
func ValidateOrPrint(logger *log.Logger, cfgs ...config.ValidatableConfig) error {
	if errors := config.Validate(cfgs...); len(errors) > 0 {
		logger.ErrorMsg("Argument validation errors:\n")
		for _, err := range errors {
			logger.ErrorMsg(" - %s\n", err)
		}
		return fmt.Errorf("exiting")
	}
	return nil
}
