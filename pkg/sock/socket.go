// Package sock owns OS socket handles and implements the primitives shared
// by every role: readiness checks, one-call send and receive, and the
// Connection Result reported by each of them.
//
// A Socket exclusively owns its handle. Ownership moves with Move, and Close
// closes the handle exactly once; the zero Socket owns nothing, so closing it
// never reaches the OS.
package sock

import (
	"estd/netsock/pkg/addr"
	"estd/netsock/pkg/platform"
	"estd/netsock/pkg/sockerr"
)

// Socket owns one OS socket handle.
type Socket struct {
	h     platform.Handle
	owned bool
}

// New creates a socket for the given family and protocol.
func New(f platform.Family, p platform.Protocol) (*Socket, error) {
	h, err := platform.Socket(f, p)
	if err != nil {
		return nil, sockerr.New(sockerr.KindSocketCreate, "socket", err)
	}
	return &Socket{h: h, owned: true}, nil
}

// Valid reports whether s owns a handle.
func (s *Socket) Valid() bool {
	return s != nil && s.owned
}

// Handle returns the owned handle, or platform.NoHandle.
func (s *Socket) Handle() platform.Handle {
	if !s.Valid() {
		return platform.NoHandle
	}
	return s.h
}

// Move transfers ownership of the handle to a new Socket. s owns nothing
// afterwards.
func (s *Socket) Move() *Socket {
	if !s.Valid() {
		return &Socket{}
	}
	out := &Socket{h: s.h, owned: true}
	s.h, s.owned = platform.NoHandle, false
	return out
}

// Close closes the handle if s owns one. Further calls are no-ops.
func (s *Socket) Close() error {
	if !s.Valid() {
		return nil
	}
	h := s.h
	s.h, s.owned = platform.NoHandle, false

	if err := platform.Close(h); err != nil {
		return sockerr.New(sockerr.KindClosed, "close", err)
	}
	return nil
}

// SetReuseAddr enables address reuse for a later Bind.
func (s *Socket) SetReuseAddr() error {
	if !s.Valid() {
		return errClosed("setsockopt")
	}
	if err := platform.SetReuseAddr(s.h); err != nil {
		return sockerr.New(sockerr.KindBind, "setsockopt", err)
	}
	return nil
}

// Bind binds s to a.
func (s *Socket) Bind(a addr.Addr) error {
	if !s.Valid() {
		return errClosed("bind")
	}
	sa, err := a.Sockaddr()
	if err != nil {
		return err
	}
	if err := platform.Bind(s.h, sa); err != nil {
		return sockerr.New(sockerr.KindBind, "bind", err).WithAddr(a.String())
	}
	return nil
}

// Listen marks s as passive.
func (s *Socket) Listen(backlog int) error {
	if !s.Valid() {
		return errClosed("listen")
	}
	if err := platform.Listen(s.h, backlog); err != nil {
		return sockerr.New(sockerr.KindListen, "listen", err)
	}
	return nil
}

// Connect makes one connection attempt to a.
func (s *Socket) Connect(a addr.Addr) error {
	if !s.Valid() {
		return errClosed("connect")
	}
	sa, err := a.Sockaddr()
	if err != nil {
		return err
	}
	if err := platform.Connect(s.h, sa); err != nil {
		return sockerr.New(sockerr.KindConnect, "connect", err).WithAddr(a.String())
	}
	return nil
}

// Accept blocks until a peer connects. The returned Socket owns the new
// connection; the peer address is copied out of the accept call.
func (s *Socket) Accept() (*Socket, addr.Addr, error) {
	if !s.Valid() {
		return nil, addr.Addr{}, errClosed("accept")
	}

	h, sa, err := platform.Accept(s.h)
	if err != nil {
		return nil, addr.Addr{}, sockerr.New(sockerr.KindAccept, "accept", err)
	}
	conn := &Socket{h: h, owned: true}

	peer, err := addr.FromRaw(sa)
	if err != nil {
		conn.Close()
		return nil, addr.Addr{}, err
	}
	return conn, peer, nil
}

// LocalAddr reads back the address s is bound to.
func (s *Socket) LocalAddr() (addr.Addr, error) {
	if !s.Valid() {
		return addr.Addr{}, errClosed("getsockname")
	}
	sa, err := platform.Getsockname(s.h)
	if err != nil {
		return addr.Addr{}, sockerr.New(sockerr.KindInvalidArgument, "getsockname", err)
	}
	return addr.FromRaw(sa)
}

func errClosed(op string) error {
	return sockerr.New(sockerr.KindClosed, op, nil)
}
