// Package tcp implements the TCP roles on top of package sock: a Client that
// connects out, a Server that binds, listens and accepts, and the
// ServerClient each accepted connection becomes.
package tcp

import (
	"time"

	"estd/netsock/pkg/log"
	"estd/netsock/pkg/sock"
)

// conn holds what Client and ServerClient have in common: one owned socket
// and the timeout PendingData waits for.
type conn struct {
	s           *sock.Socket
	readTimeout time.Duration
	logger      *log.Logger
}

func newConn(s *sock.Socket, readTimeout time.Duration, logger *log.Logger) conn {
	if readTimeout <= 0 {
		readTimeout = sock.DefaultReadTimeout
	}
	return conn{s: s, readTimeout: readTimeout, logger: logger}
}

// PendingData waits up to the read timeout and reports whether a Receive
// would return without blocking. Poll failures count as no data.
func (c *conn) PendingData() bool {
	r, err := c.WaitReadable(c.readTimeout)
	if err != nil {
		c.logger.VerboseMsg("PendingData: %s", err)
	}
	return r == sock.ReadinessReady
}

// WaitReadable waits up to timeout for data to arrive.
func (c *conn) WaitReadable(timeout time.Duration) (sock.Readiness, error) {
	return c.s.WaitReadable(timeout)
}

// Send makes a single send call; see sock.Socket.Send.
func (c *conn) Send(b []byte) (int, sock.Status, error) {
	return c.s.Send(b)
}

// SendAll sends until b is written or the connection stops reporting
// StatusConnected.
func (c *conn) SendAll(b []byte) (int, sock.Status, error) {
	return c.s.SendAll(b)
}

// Receive appends up to max received bytes to dst.
func (c *conn) Receive(dst []byte, max int) ([]byte, sock.Status, error) {
	return c.s.Receive(dst, max)
}

// Close releases the socket. It is safe to call more than once.
func (c *conn) Close() error {
	return c.s.Close()
}
