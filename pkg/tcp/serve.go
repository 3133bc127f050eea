package tcp

import (
	"context"
	"sync"
	"time"

	"estd/netsock/pkg/log"
	"estd/netsock/pkg/semaphore"
	"estd/netsock/pkg/sock"
	"estd/netsock/pkg/sockerr"
)

// acceptPollInterval bounds how long Serve waits on the listening socket
// before it checks the context again.
const acceptPollInterval = 250 * time.Millisecond

// Handler processes one accepted connection. Serve closes the connection
// after the handler returns.
type Handler func(ctx context.Context, c *ServerClient) error

// Serve accepts connections on a bound server until ctx is cancelled and
// runs handle for each one in its own goroutine. The goroutine owns the
// connection. If sem is non-nil it bounds the number of concurrent handlers;
// a connection that cannot get a slot in time is logged and closed right
// away. One still waiting when ctx ends is closed without a message.
// Serve waits for running handlers before it returns.
func Serve(ctx context.Context, srv *Server, handle Handler, sem *semaphore.ConnSemaphore, logger *log.Logger) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		if ctx.Err() != nil {
			return nil
		}

		r, err := srv.waitAcceptable(acceptPollInterval)
		if err != nil {
			return err
		}
		if r != sock.ReadinessReady {
			continue
		}

		sc, err := srv.Accept()
		if err != nil {
			return err
		}

		if err := sem.Acquire(ctx); err != nil {
			if sockerr.KindOf(err) == sockerr.KindTimeout {
				logger.ErrorMsg("Dropping connection from %s: %s\n", sc.RemoteAddr(), err)
			}
			sc.Close()
			continue
		}

		wg.Add(1)
		go func(sc *ServerClient) {
			defer wg.Done()
			defer sem.Release()
			defer sc.Close()
			// a panicking handler must not leak its slot
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorMsg("Handler panic: %v\n", r)
				}
			}()

			logger.InfoMsg("New TCP connection from %s\n", sc.RemoteAddr())

			if err := handle(ctx, sc); err != nil {
				logger.ErrorMsg("Handling connection: %s\n", err)
			}
		}(sc)
	}
}
