//go:build unix

package platform

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Handle is a socket file descriptor.
type Handle int

// NoHandle is never a valid descriptor.
const NoHandle Handle = -1

// Sockaddr is the native socket address.
type Sockaddr = unix.Sockaddr

const (
	sizeofSockaddrInet4 = unix.SizeofSockaddrInet4
	sizeofSockaddrInet6 = unix.SizeofSockaddrInet6
)

// Startup returns a guard. Unix needs no subsystem initialization.
func Startup() (*Subsystem, error) {
	return &Subsystem{}, nil
}

// Socket creates a blocking, close-on-exec socket.
func Socket(f Family, p Protocol) (Handle, error) {
	domain, err := domainOf(f)
	if err != nil {
		return NoHandle, err
	}

	typ := unix.SOCK_STREAM
	if p == ProtoUDP {
		typ = unix.SOCK_DGRAM
	}

	fd, err := unix.Socket(domain, typ, 0)
	if err != nil {
		return NoHandle, err
	}
	unix.CloseOnExec(fd)

	return Handle(fd), nil
}

// Close closes h. Closing the same descriptor twice is undefined, so callers
// must track ownership.
func Close(h Handle) error {
	return unix.Close(int(h))
}

// SetReuseAddr enables SO_REUSEADDR so a restarted server can rebind a port
// still held by a lingering previous connection.
func SetReuseAddr(h Handle) error {
	return unix.SetsockoptInt(int(h), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

// Bind binds h to sa.
func Bind(h Handle, sa Sockaddr) error {
	return unix.Bind(int(h), sa)
}

// Listen marks h as passive with the given backlog.
func Listen(h Handle, backlog int) error {
	return unix.Listen(int(h), backlog)
}

// Connect connects h to sa using the OS default timeout.
func Connect(h Handle, sa Sockaddr) error {
	return unix.Connect(int(h), sa)
}

// Accept blocks until a peer connects and returns the new descriptor and the
// peer's address.
func Accept(h Handle) (Handle, Sockaddr, error) {
	fd, sa, err := unix.Accept(int(h))
	if err != nil {
		return NoHandle, nil, err
	}
	unix.CloseOnExec(fd)

	return Handle(fd), sa, nil
}

// Getsockname returns the address h is bound to.
func Getsockname(h Handle) (Sockaddr, error) {
	return unix.Getsockname(int(h))
}

// Send performs one write. The Go runtime turns SIGPIPE on sockets into EPIPE.
func Send(h Handle, b []byte) (int, error) {
	return unix.Write(int(h), b)
}

// Recv performs one read.
func Recv(h Handle, b []byte) (int, error) {
	return unix.Read(int(h), b)
}

// Poll waits up to timeout for h to become readable. A negative timeout
// waits forever. Hang-up and pending errors count as readable since the next
// read returns immediately.
func Poll(h Handle, timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	fds := []unix.PollFd{{Fd: int32(h), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, pollMillis(deadline))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}

		rev := fds[0].Revents
		if rev&unix.POLLNVAL != 0 {
			return false, unix.EBADF
		}
		return rev&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}

func pollMillis(deadline time.Time) int {
	if deadline.IsZero() {
		return -1
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0
	}
	return int((left + time.Millisecond - 1) / time.Millisecond)
}

// IsDisconnect reports whether err means the peer went away.
func IsDisconnect(err error) bool {
	return errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.ENOTCONN)
}

// ErrorString renders err with its symbolic errno name when it has one,
// e.g. "ECONNREFUSED (111): connection refused".
func ErrorString(err error) string {
	if err == nil {
		return ""
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err.Error()
	}

	name := unix.ErrnoName(errno)
	if name == "" {
		name = "errno"
	}
	return fmt.Sprintf("%s (%s): %s", name, strconv.Itoa(int(errno)), errno.Error())
}

// ToSockaddr builds a fresh native address for ap.
func ToSockaddr(ap netip.AddrPort) (Sockaddr, error) {
	ip := ap.Addr()

	switch FamilyOf(ip) {
	case FamilyIPv4:
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: ip.As4()}, nil
	case FamilyIPv6:
		return &unix.SockaddrInet6{Port: int(ap.Port()), ZoneId: zoneIndex(ip.Zone()), Addr: ip.As16()}, nil
	default:
		return nil, unsupportedFamily(FamilyUnspec)
	}
}

// FromSockaddr copies an IPv4 or IPv6 native address out into a value.
func FromSockaddr(sa Sockaddr) (netip.AddrPort, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), nil
	case *unix.SockaddrInet6:
		ip := netip.AddrFrom16(sa.Addr).WithZone(zoneName(sa.ZoneId))
		return netip.AddrPortFrom(ip, uint16(sa.Port)), nil
	default:
		return netip.AddrPort{}, fmt.Errorf("unsupported socket address %T", sa)
	}
}

func domainOf(f Family) (int, error) {
	switch f {
	case FamilyIPv4:
		return unix.AF_INET, nil
	case FamilyIPv6:
		return unix.AF_INET6, nil
	default:
		return 0, unsupportedFamily(f)
	}
}
