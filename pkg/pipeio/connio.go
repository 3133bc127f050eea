package pipeio

import (
	"io"
	"sync/atomic"
	"time"

	"estd/netsock/pkg/sock"
)

// DefaultPollInterval is how often a blocked ConnIO.Read checks whether it
// was closed.
const DefaultPollInterval = 200 * time.Millisecond

// ConnIO adapts a sock.Conn to io.ReadWriteCloser. Read waits in short
// polls so that Close from another goroutine ends it; Close never closes
// the connection itself, that stays with the owner once Pipe returns.
type ConnIO struct {
	conn         sock.Conn
	pollInterval time.Duration
	closed       atomic.Bool
}

// NewConnIO wraps conn.
func NewConnIO(conn sock.Conn) *ConnIO {
	return &ConnIO{conn: conn, pollInterval: DefaultPollInterval}
}

// Read receives at most len(p) bytes. An orderly shutdown of the peer, or a
// prior Close, reads as io.EOF.
func (c *ConnIO) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		if c.closed.Load() {
			return 0, io.EOF
		}
		ready, err := c.wait()
		if err != nil {
			return 0, err
		}
		if ready {
			break
		}
	}

	buf, st, err := c.conn.Receive(p[:0], len(p))
	switch st {
	case sock.StatusConnected:
		return len(buf), nil
	case sock.StatusDisconnected:
		return 0, io.EOF
	default:
		return 0, err
	}
}

func (c *ConnIO) wait() (bool, error) {
	w, ok := c.conn.(sock.Waiter)
	if !ok {
		return c.conn.PendingData(), nil
	}

	r, err := w.WaitReadable(c.pollInterval)
	if err != nil {
		return false, err
	}
	return r == sock.ReadinessReady, nil
}

// Write sends all of p.
func (c *ConnIO) Write(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, io.ErrClosedPipe
	}

	total := 0
	for total < len(p) {
		n, st, err := c.conn.Send(p[total:])
		total += n
		switch st {
		case sock.StatusDisconnected:
			return total, io.ErrClosedPipe
		case sock.StatusError:
			return total, err
		}
	}
	return total, nil
}

// Close makes pending and future reads return io.EOF.
func (c *ConnIO) Close() error {
	c.closed.Store(true)
	return nil
}
