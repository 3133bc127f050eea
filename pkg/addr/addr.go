// Package addr provides the address value passed to socket calls and the
// resolution of host/service strings into such values.
package addr

import (
	"net/netip"

	"estd/netsock/pkg/platform"
	"estd/netsock/pkg/sockerr"
)

// Addr is an immutable socket address. It is a small fixed-size value and
// may be copied freely. The zero value is invalid.
type Addr struct {
	ap netip.AddrPort
}

// Record is one resolver answer.
type Record struct {
	IP   netip.Addr
	Port uint16
}

// FromResolved copies a resolver answer into an Addr.
func FromResolved(r Record) (Addr, error) {
	if !r.IP.IsValid() {
		return Addr{}, sockerr.Newf(sockerr.KindInvalidArgument, "addr", "invalid resolver record %+v", r)
	}
	return Addr{ap: netip.AddrPortFrom(r.IP, r.Port)}, nil
}

// FromRaw copies a native address, as returned by accept or getsockname,
// into an Addr.
func FromRaw(sa platform.Sockaddr) (Addr, error) {
	ap, err := platform.FromSockaddr(sa)
	if err != nil {
		return Addr{}, sockerr.New(sockerr.KindInvalidArgument, "addr", err)
	}
	return Addr{ap: ap}, nil
}

// Sockaddr builds a new native address on every call, so a transport call
// may never write into the Addr itself.
func (a Addr) Sockaddr() (platform.Sockaddr, error) {
	sa, err := platform.ToSockaddr(a.ap)
	if err != nil {
		return nil, sockerr.New(sockerr.KindInvalidArgument, "addr", err)
	}
	return sa, nil
}

// Len is the byte length of the native structure Sockaddr returns.
func (a Addr) Len() int {
	return platform.SockaddrLen(a.Family())
}

// Family reports IPv4 or IPv6, or FamilyUnspec for the zero value.
func (a Addr) Family() platform.Family {
	return platform.FamilyOf(a.ap.Addr())
}

// IsValid reports whether a holds an address.
func (a Addr) IsValid() bool {
	return a.ap.IsValid()
}

func (a Addr) IP() netip.Addr {
	return a.ap.Addr()
}

func (a Addr) Port() uint16 {
	return a.ap.Port()
}

// AddrPort returns a as a netip.AddrPort.
func (a Addr) AddrPort() netip.AddrPort {
	return a.ap
}

func (a Addr) String() string {
	if !a.IsValid() {
		return "<invalid>"
	}
	return a.ap.String()
}
