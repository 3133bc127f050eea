// Package helpers provides common utilities for integration and end-to-end tests.
package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estd/netsock/pkg/tcp"
)

// FreePort asks the OS for an unused loopback port. Another process may take
// it before the caller binds, so tests using it should be tolerant of that.
func FreePort() (int, error) {
	srv := tcp.NewServer(tcp.ServerOptions{Host: "127.0.0.1"})
	if err := srv.Bind(context.Background()); err != nil {
		return 0, fmt.Errorf("srv.Bind(): %s", err)
	}
	defer srv.Close()

	return int(srv.LocalAddr().Port()), nil
}

// RetryConnect calls run until it gets past the connection attempt, which
// fails while the listener is still starting up. It returns run's final
// result.
func RetryConnect(ctx context.Context, run func() error) error {
	for {
		err := run()
		if err == nil || ctx.Err() != nil || !strings.Contains(err.Error(), "connecting") {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(50 * time.Millisecond):
		}
	}
}
