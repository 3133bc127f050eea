//go:build windows

package platform

import (
	"errors"
	"fmt"
	"net/netip"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Handle is a Winsock SOCKET.
type Handle uintptr

// NoHandle is INVALID_SOCKET.
const NoHandle = Handle(windows.InvalidHandle)

// Sockaddr is the native socket address.
type Sockaddr = windows.Sockaddr

const (
	sizeofSockaddrInet4 = 16
	sizeofSockaddrInet6 = 28
)

const (
	pollRdNorm = 0x0100
	pollErr    = 0x0001
	pollHup    = 0x0002
	pollNval   = 0x0004

	wsaeconnaborted = syscall.Errno(10053)
	wsaeconnreset   = syscall.Errno(10054)
	wsaenotconn     = syscall.Errno(10057)
	wsaeshutdown    = syscall.Errno(10058)
	wsaenotsock     = syscall.Errno(10038)
	wsaeinval       = syscall.Errno(10022)
)

var (
	modws2_32   = windows.NewLazySystemDLL("ws2_32.dll")
	procAccept  = modws2_32.NewProc("accept")
	procWSAPoll = modws2_32.NewProc("WSAPoll")
)

type wsaPollFD struct {
	fd      Handle
	events  int16
	revents int16
}

// Startup initializes Winsock 2.2. The returned guard runs WSACleanup once.
func Startup() (*Subsystem, error) {
	var data windows.WSAData
	if err := windows.WSAStartup(uint32(0x0202), &data); err != nil {
		return nil, err
	}
	return &Subsystem{release: windows.WSACleanup}, nil
}

// Socket creates a blocking socket.
func Socket(f Family, p Protocol) (Handle, error) {
	domain, err := domainOf(f)
	if err != nil {
		return NoHandle, err
	}

	typ, proto := windows.SOCK_STREAM, windows.IPPROTO_TCP
	if p == ProtoUDP {
		typ, proto = windows.SOCK_DGRAM, windows.IPPROTO_UDP
	}

	s, err := windows.Socket(domain, typ, proto)
	if err != nil {
		return NoHandle, err
	}
	return Handle(s), nil
}

// Close closes h with closesocket. Closing the same handle twice is
// undefined, so callers must track ownership.
func Close(h Handle) error {
	return windows.Closesocket(windows.Handle(h))
}

// SetReuseAddr enables SO_REUSEADDR.
func SetReuseAddr(h Handle) error {
	return windows.SetsockoptInt(windows.Handle(h), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
}

// Bind binds h to sa.
func Bind(h Handle, sa Sockaddr) error {
	return windows.Bind(windows.Handle(h), sa)
}

// Listen marks h as passive with the given backlog.
func Listen(h Handle, backlog int) error {
	return windows.Listen(windows.Handle(h), backlog)
}

// Connect connects h to sa using the OS default timeout.
func Connect(h Handle, sa Sockaddr) error {
	return windows.Connect(windows.Handle(h), sa)
}

// Accept blocks until a peer connects and returns the new socket and the
// peer's address.
func Accept(h Handle) (Handle, Sockaddr, error) {
	var rsa windows.RawSockaddrAny
	l := int32(unsafe.Sizeof(rsa))

	r0, _, e1 := procAccept.Call(uintptr(h), uintptr(unsafe.Pointer(&rsa)), uintptr(unsafe.Pointer(&l)))
	if Handle(r0) == NoHandle {
		return NoHandle, nil, lastError(e1)
	}

	sa, err := rsa.Sockaddr()
	if err != nil {
		windows.Closesocket(windows.Handle(r0))
		return NoHandle, nil, err
	}
	return Handle(r0), sa, nil
}

// Getsockname returns the address h is bound to.
func Getsockname(h Handle) (Sockaddr, error) {
	return windows.Getsockname(windows.Handle(h))
}

// Send performs one WSASend.
func Send(h Handle, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	buf := windows.WSABuf{Len: uint32(len(b)), Buf: &b[0]}

	var sent uint32
	if err := windows.WSASend(windows.Handle(h), &buf, 1, &sent, 0, nil, nil); err != nil {
		return 0, err
	}
	return int(sent), nil
}

// Recv performs one WSARecv.
func Recv(h Handle, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	buf := windows.WSABuf{Len: uint32(len(b)), Buf: &b[0]}

	var recvd, flags uint32
	if err := windows.WSARecv(windows.Handle(h), &buf, 1, &recvd, &flags, nil, nil); err != nil {
		return 0, err
	}
	return int(recvd), nil
}

// Poll waits up to timeout for h to become readable using WSAPoll. A
// negative timeout waits forever.
func Poll(h Handle, timeout time.Duration) (bool, error) {
	ms := int32(-1)
	if timeout >= 0 {
		ms = int32((timeout + time.Millisecond - 1) / time.Millisecond)
	}

	fds := []wsaPollFD{{fd: h, events: pollRdNorm}}
	r0, _, e1 := procWSAPoll.Call(uintptr(unsafe.Pointer(&fds[0])), 1, uintptr(ms))
	n := int32(r0)
	if n < 0 {
		return false, lastError(e1)
	}
	if n == 0 {
		return false, nil
	}

	rev := fds[0].revents
	if rev&pollNval != 0 {
		return false, wsaenotsock
	}
	return rev&(pollRdNorm|pollHup|pollErr) != 0, nil
}

// IsDisconnect reports whether err means the peer went away.
func IsDisconnect(err error) bool {
	return errors.Is(err, wsaeconnreset) || errors.Is(err, wsaeconnaborted) ||
		errors.Is(err, wsaeshutdown) || errors.Is(err, wsaenotconn)
}

// ErrorString renders err with its Winsock error code when it has one,
// e.g. "WSA 10061: No connection could be made ...".
func ErrorString(err error) string {
	if err == nil {
		return ""
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err.Error()
	}
	return fmt.Sprintf("WSA %d: %s", uint32(errno), errno.Error())
}

// ToSockaddr builds a fresh native address for ap.
func ToSockaddr(ap netip.AddrPort) (Sockaddr, error) {
	ip := ap.Addr()

	switch FamilyOf(ip) {
	case FamilyIPv4:
		return &windows.SockaddrInet4{Port: int(ap.Port()), Addr: ip.As4()}, nil
	case FamilyIPv6:
		return &windows.SockaddrInet6{Port: int(ap.Port()), ZoneId: zoneIndex(ip.Zone()), Addr: ip.As16()}, nil
	default:
		return nil, unsupportedFamily(FamilyUnspec)
	}
}

// FromSockaddr copies an IPv4 or IPv6 native address out into a value.
func FromSockaddr(sa Sockaddr) (netip.AddrPort, error) {
	switch sa := sa.(type) {
	case *windows.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), nil
	case *windows.SockaddrInet6:
		ip := netip.AddrFrom16(sa.Addr).WithZone(zoneName(sa.ZoneId))
		return netip.AddrPortFrom(ip, uint16(sa.Port)), nil
	default:
		return netip.AddrPort{}, fmt.Errorf("unsupported socket address %T", sa)
	}
}

func domainOf(f Family) (int, error) {
	switch f {
	case FamilyIPv4:
		return windows.AF_INET, nil
	case FamilyIPv6:
		return windows.AF_INET6, nil
	default:
		return 0, unsupportedFamily(f)
	}
}

// lastError turns the error returned by LazyProc.Call into a non-nil error.
func lastError(e error) error {
	var errno syscall.Errno
	if errors.As(e, &errno) && errno != 0 {
		return errno
	}
	return wsaeinval
}
