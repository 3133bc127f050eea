package tcp

import (
	"context"
	"time"

	"estd/netsock/pkg/addr"
	"estd/netsock/pkg/log"
	"estd/netsock/pkg/platform"
	"estd/netsock/pkg/sock"
	"estd/netsock/pkg/sockerr"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// Family restricts the addresses Connect will use. With FamilyUnspec the
	// socket is created at Connect time for the first resolved candidate.
	Family      platform.Family
	ReadTimeout time.Duration
	Logger      *log.Logger
	Resolver    *addr.Resolver
}

// Client is an outgoing TCP connection. It makes exactly one connection
// attempt over its lifetime.
type Client struct {
	conn

	family    platform.Family
	resolver  *addr.Resolver
	attempted bool
	local     addr.Addr
	remote    addr.Addr
}

var _ sock.Client = (*Client)(nil)

// NewClient returns an unconnected client. With a concrete family the socket
// is created right away and a failure is returned here.
func NewClient(opts ClientOptions) (*Client, error) {
	c := &Client{
		conn:     newConn(nil, opts.ReadTimeout, opts.Logger),
		family:   opts.Family,
		resolver: opts.Resolver,
	}

	if opts.Family != platform.FamilyUnspec {
		s, err := sock.New(opts.Family, platform.ProtoTCP)
		if err != nil {
			return nil, err
		}
		c.s = s
	}
	return c, nil
}

// Connect resolves host and port and connects to the first candidate. It
// never retries; a second call reports a KindState error.
func (c *Client) Connect(ctx context.Context, host, port string) (sock.Status, error) {
	if c.attempted {
		return sock.StatusError, sockerr.Newf(sockerr.KindState, "connect", "client already made its connection attempt")
	}
	c.attempted = true

	candidates, err := c.resolver.Resolve(ctx, host, port, addr.Hints{
		Family:   c.family,
		Protocol: platform.ProtoTCP,
	})
	if err != nil {
		return sock.StatusError, err
	}
	target := candidates[0]

	if c.s == nil {
		s, err := sock.New(target.Family(), platform.ProtoTCP)
		if err != nil {
			return sock.StatusError, err
		}
		c.s = s
	}

	c.logger.VerboseMsg("Connecting to %s", target)
	if err := c.s.Connect(target); err != nil {
		return sock.StatusError, err
	}
	c.remote = target

	if local, err := c.s.LocalAddr(); err == nil {
		c.local = local
	}
	return sock.StatusConnected, nil
}

// LocalAddr returns the address the OS bound for the connection.
func (c *Client) LocalAddr() addr.Addr {
	return c.local
}

// RemoteAddr returns the address Connect succeeded with.
func (c *Client) RemoteAddr() addr.Addr {
	return c.remote
}
