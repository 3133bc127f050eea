package version

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X ...version.Version=...".
var Version = "unknown"

// GetCommand returns the version command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Program version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var w io.Writer = os.Stdout
			if root := cmd.Root(); root != nil && root.Writer != nil {
				w = root.Writer
			}
			fmt.Fprintf(w, "%s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
			return nil
		},
		Flags: []cli.Flag{},
	}
}
