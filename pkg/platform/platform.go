// Package platform is the only place that talks to the operating system's
// socket API. Each supported target family (unix, windows) implements the
// same set of functions in its own build-tagged file:
//
//   - Socket, Close, SetReuseAddr, Bind, Listen, Connect, Accept, Getsockname
//   - Send, Recv (one OS call each, no looping)
//   - Poll (bounded wait for readability)
//   - ErrorString (human readable platform error)
//   - Startup (scoped subsystem guard, a no-op on unix)
//
// Everything above this package is written against that set only.
package platform

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"sync"
)

// Family selects the address family of a socket or a resolution request.
type Family int

const (
	// FamilyUnspec lets the resolver answer with any family.
	FamilyUnspec Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unspec"
	}
}

// FamilyOf reports the family of ip. IPv4-mapped IPv6 addresses stay IPv6,
// matching the socket address structure they travel in.
func FamilyOf(ip netip.Addr) Family {
	switch {
	case !ip.IsValid():
		return FamilyUnspec
	case ip.Is4():
		return FamilyIPv4
	default:
		return FamilyIPv6
	}
}

// Protocol is the transport protocol of a socket.
type Protocol int

const (
	ProtoTCP Protocol = iota
	ProtoUDP
)

func (p Protocol) String() string {
	switch p {
	case ProtoUDP:
		return "udp"
	default:
		return "tcp"
	}
}

// Network returns the Go network name used for service lookups.
func (p Protocol) Network() string {
	return p.String()
}

// SockaddrLen is the byte length of the native socket address structure
// for f (sockaddr_in or sockaddr_in6). It returns 0 for FamilyUnspec.
func SockaddrLen(f Family) int {
	switch f {
	case FamilyIPv4:
		return sizeofSockaddrInet4
	case FamilyIPv6:
		return sizeofSockaddrInet6
	default:
		return 0
	}
}

// Subsystem is the scoped guard for process-wide socket subsystem state.
// Startup returns one; Close releases it exactly once no matter how often
// it is called. On platforms without such state both are no-ops.
type Subsystem struct {
	once    sync.Once
	release func() error
	err     error
}

// Close shuts the subsystem down. Only the first call has an effect.
func (s *Subsystem) Close() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		if s.release != nil {
			s.err = s.release()
		}
	})
	return s.err
}

// zoneIndex maps an IPv6 zone (interface name or numeric index) to the
// scope id stored in sockaddr_in6.
func zoneIndex(zone string) uint32 {
	if zone == "" {
		return 0
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n)
	}
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index)
	}
	return 0
}

// zoneName is the inverse of zoneIndex.
func zoneName(index uint32) string {
	if index == 0 {
		return ""
	}
	if ifi, err := net.InterfaceByIndex(int(index)); err == nil {
		return ifi.Name
	}
	return strconv.FormatUint(uint64(index), 10)
}

func unsupportedFamily(f Family) error {
	return fmt.Errorf("unsupported address family %s", f)
}
