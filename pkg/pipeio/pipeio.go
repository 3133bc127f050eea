// Package pipeio connects two byte streams, typically standard I/O and a
// socket connection, and copies data both ways until one side ends.
package pipeio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"

	"github.com/muesli/cancelreader"
)

// Pipe copies rwc1 to rwc2 and rwc2 to rwc1. When either direction ends, or
// ctx is cancelled, both sides are closed. Pipe returns once both copies
// have stopped. Errors that only report the other side going away are not
// passed to logfunc.
func Pipe(ctx context.Context, rwc1 io.ReadWriteCloser, rwc2 io.ReadWriteCloser, logfunc func(error)) {
	var wg sync.WaitGroup
	var o sync.Once
	done := make(chan struct{})

	closeBoth := func() {
		rwc1.Close()
		rwc2.Close()
		close(done)
	}

	copyTo := func(dst io.Writer, src io.Reader, desc string) {
		defer wg.Done()

		_, err := io.Copy(dst, src)
		if err != nil && !isClosedErr(err) {
			logfunc(fmt.Errorf("io.Copy(%s): %w", desc, err))
		}

		o.Do(closeBoth)
	}

	wg.Add(2)
	go copyTo(rwc1, rwc2, "rwc1, rwc2")
	go copyTo(rwc2, rwc1, "rwc2, rwc1")

	select {
	case <-ctx.Done():
		o.Do(closeBoth)
	case <-done:
	}

	wg.Wait()
}

func isClosedErr(err error) bool {
	return errors.Is(err, cancelreader.ErrCanceled) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
