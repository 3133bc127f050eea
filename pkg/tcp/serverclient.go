package tcp

import (
	"estd/netsock/pkg/addr"
	"estd/netsock/pkg/sock"
)

// ServerClient is one connection accepted by a Server. Only Server.Accept
// creates usable values; a zero ServerClient owns no socket and every
// operation on it fails with a KindClosed error.
type ServerClient struct {
	conn

	remote addr.Addr
}

var _ sock.Conn = (*ServerClient)(nil)

func newServerClient(s *sock.Socket, remote addr.Addr, srv *Server) *ServerClient {
	return &ServerClient{
		conn:   newConn(s, srv.readTimeout, srv.logger),
		remote: remote,
	}
}

// RemoteAddr returns the peer address captured when the connection was
// accepted.
func (sc *ServerClient) RemoteAddr() addr.Addr {
	return sc.remote
}

// LocalAddr returns the local end of the connection.
func (sc *ServerClient) LocalAddr() (addr.Addr, error) {
	return sc.s.LocalAddr()
}
