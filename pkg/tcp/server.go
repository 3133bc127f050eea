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

// DefaultBacklog is the listen queue length used when ServerOptions.Backlog
// is not set.
const DefaultBacklog = 100

// ServerOptions configures a Server. Empty Host binds the wildcard address;
// empty Port lets the OS pick one.
type ServerOptions struct {
	Host        string
	Port        string
	Family      platform.Family
	Backlog     int
	ReadTimeout time.Duration
	Logger      *log.Logger
	Resolver    *addr.Resolver
}

// Server is a listening TCP socket. It keeps no reference to the clients it
// accepts.
type Server struct {
	host, port  string
	family      platform.Family
	backlog     int
	readTimeout time.Duration
	logger      *log.Logger
	resolver    *addr.Resolver

	ln    *sock.Socket
	local addr.Addr
	bound bool
}

var _ sock.Server = (*Server)(nil)

// NewServer returns an unbound server.
func NewServer(opts ServerOptions) *Server {
	backlog := opts.Backlog
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = sock.DefaultReadTimeout
	}

	return &Server{
		host:        opts.Host,
		port:        opts.Port,
		family:      opts.Family,
		backlog:     backlog,
		readTimeout: readTimeout,
		logger:      opts.Logger,
		resolver:    opts.Resolver,
	}
}

// Bind resolves the local address and, for each candidate in resolver order,
// creates a socket, enables address reuse, binds and listens. The first
// candidate that gets through all steps wins. If none does, the error of the
// last attempt is returned.
func (srv *Server) Bind(ctx context.Context) error {
	if srv.bound {
		return sockerr.Newf(sockerr.KindState, "bind", "server is already bound to %s", srv.local)
	}

	candidates, err := srv.resolver.Resolve(ctx, srv.host, srv.port, addr.Hints{
		Family:   srv.family,
		Protocol: platform.ProtoTCP,
		Passive:  true,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for _, a := range candidates {
		ln, err := srv.listenOn(a)
		if err != nil {
			srv.logger.VerboseMsg("Binding %s: %s", a, err)
			lastErr = err
			continue
		}

		local, err := ln.LocalAddr()
		if err != nil {
			ln.Close()
			lastErr = err
			continue
		}

		srv.ln, srv.local, srv.bound = ln, local, true
		srv.logger.VerboseMsg("Listening on %s", local)
		return nil
	}
	return lastErr
}

func (srv *Server) listenOn(a addr.Addr) (*sock.Socket, error) {
	s, err := sock.New(a.Family(), platform.ProtoTCP)
	if err != nil {
		return nil, err
	}
	if err := s.SetReuseAddr(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Bind(a); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Listen(srv.backlog); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// LocalAddr returns the bound address as reported by the OS, so a requested
// port of 0 reads back as the port actually assigned.
func (srv *Server) LocalAddr() addr.Addr {
	return srv.local
}

// PendingData waits up to the read timeout and reports whether a connection
// is waiting to be accepted.
func (srv *Server) PendingData() bool {
	r, err := srv.waitAcceptable(srv.readTimeout)
	if err != nil {
		srv.logger.VerboseMsg("PendingData: %s", err)
	}
	return r == sock.ReadinessReady
}

func (srv *Server) waitAcceptable(timeout time.Duration) (sock.Readiness, error) {
	if !srv.bound {
		return sock.ReadinessError, sockerr.New(sockerr.KindNotBound, "poll", nil)
	}
	return srv.ln.WaitReadable(timeout)
}

// Accept blocks until a peer connects and returns the connection. The caller
// owns the returned ServerClient and must close it.
func (srv *Server) Accept() (*ServerClient, error) {
	if !srv.bound {
		return nil, sockerr.New(sockerr.KindNotBound, "accept", nil)
	}

	s, peer, err := srv.ln.Accept()
	if err != nil {
		return nil, err
	}
	return newServerClient(s, peer, srv), nil
}

// AcceptClient is Accept returning the sock.Conn interface.
func (srv *Server) AcceptClient() (sock.Conn, error) {
	sc, err := srv.Accept()
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Close closes the listening socket. Connections already accepted stay open.
func (srv *Server) Close() error {
	return srv.ln.Close()
}
