// Package shared provides common CLI flag definitions and utility functions
// used across netsock's command-line interface.
package shared

import (
	"strings"
	"time"

	"estd/netsock/pkg/config"
	"estd/netsock/pkg/semaphore"
	"estd/netsock/pkg/sock"
	"estd/netsock/pkg/tcp"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// VerboseFlag is the name of the flag to enable verbose error logging.
const VerboseFlag = config.KeyVerbose

// ReadTimeoutFlag is the name of the flag that bounds readiness checks.
const ReadTimeoutFlag = config.KeyReadTimeout

// LogFileFlag is the name of the flag to record a session transcript.
const LogFileFlag = config.KeyLogFile

// ConfigFlag is the name of the flag pointing at a YAML config file.
const ConfigFlag = "config"

// IPv4Flag and IPv6Flag restrict the address family.
const (
	IPv4Flag = "ipv4"
	IPv6Flag = "ipv6"
)

// GetBaseDescription returns the base description text for transport
// specifications used in CLI commands.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify transport like this: tcp://127.0.0.1:4444 or tcp://[::1]:4444",
		"You can omit the host when listening to bind to all interfaces.",
	}, "\n")
}

// GetArgsUsage returns the arguments usage string for CLI commands.
func GetArgsUsage() string {
	return strings.Join([]string{
		"transport",
	}, " ")
}

// GetCommonFlags returns the CLI flags used by both listen and connect.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose error logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.DurationFlag{
			Name:     ReadTimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "How long a readiness check waits for data",
			Category: categoryCommon,
			Value:    sock.DefaultReadTimeout,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Append everything sent and received to this file",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.StringFlag{
			Name:     ConfigFlag,
			Aliases:  []string{"c"},
			Usage:    "YAML config file, command line flags take precedence",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     IPv4Flag,
			Aliases:  []string{"4"},
			Usage:    "Use IPv4 addresses only",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.BoolFlag{
			Name:     IPv6Flag,
			Aliases:  []string{"6"},
			Usage:    "Use IPv6 addresses only",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
	}
}

// GetConnectFlags returns the CLI flags specific to connect mode.
// Currently returns an empty slice.
func GetConnectFlags() []cli.Flag {
	return []cli.Flag{}
}

const categoryListen = "listen"

// BacklogFlag is the name of the flag setting the listen queue length.
const BacklogFlag = config.KeyBacklog

// MaxConnsFlag is the name of the flag limiting concurrent connections.
const MaxConnsFlag = config.KeyMaxConns

// SlotTimeoutFlag is the name of the flag bounding the wait for a free
// connection slot.
const SlotTimeoutFlag = config.KeySlotTimeout

// EchoFlag is the name of the flag that echoes data back instead of
// piping it to standard I/O.
const EchoFlag = "echo"

// GetListenFlags returns the CLI flags specific to listen mode.
func GetListenFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     BacklogFlag,
			Aliases:  []string{"b"},
			Usage:    "Listen queue length",
			Category: categoryListen,
			Value:    tcp.DefaultBacklog,
			Required: false,
		},
		&cli.IntFlag{
			Name:     MaxConnsFlag,
			Aliases:  []string{"m"},
			Usage:    "Concurrent connections in echo mode, 0 for no limit (stdio mode always handles one)",
			Category: categoryListen,
			Value:    0,
			Required: false,
		},
		&cli.DurationFlag{
			Name:     SlotTimeoutFlag,
			Usage:    "How long a new connection waits for a free slot before it is dropped",
			Category: categoryListen,
			Value:    100 * time.Millisecond,
			Required: false,
		},
		&cli.BoolFlag{
			Name:     EchoFlag,
			Aliases:  []string{"e"},
			Usage:    "Echo received data back to the peer instead of using stdin/stdout",
			Category: categoryListen,
			Value:    false,
			Required: false,
		},
	}
}

// NewSemaphore returns the connection limit for listen mode. Stdio mode
// always serves a single peer.
func NewSemaphore(lCfg *config.Listen) *semaphore.ConnSemaphore {
	switch {
	case !lCfg.Echo:
		return semaphore.New(1, lCfg.SlotTimeout)
	case lCfg.MaxConns > 0:
		return semaphore.New(lCfg.MaxConns, lCfg.SlotTimeout)
	default:
		return nil
	}
}
