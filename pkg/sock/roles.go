package sock

import (
	"context"
	"time"
)

// Pollable can tell whether a read would return without blocking.
type Pollable interface {
	// PendingData waits up to the configured read timeout and reports
	// whether a read would return immediately.
	PendingData() bool
}

// Waiter waits a caller-chosen time for readable data.
type Waiter interface {
	WaitReadable(timeout time.Duration) (Readiness, error)
}

// Conn is a connected byte stream.
type Conn interface {
	Pollable
	Send(b []byte) (int, Status, error)
	Receive(dst []byte, max int) ([]byte, Status, error)
	Close() error
}

// Client is a Conn that establishes its own connection.
type Client interface {
	Conn
	Connect(ctx context.Context, host, port string) (Status, error)
}

// Server accepts connections. Bind must succeed before AcceptClient.
type Server interface {
	Pollable
	Bind(ctx context.Context) error
	AcceptClient() (Conn, error)
	Close() error
}
