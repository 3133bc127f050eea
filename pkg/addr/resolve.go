package addr

import (
	"context"
	"net"
	"net/netip"
	"strconv"

	"estd/netsock/pkg/format"
	"estd/netsock/pkg/platform"
	"estd/netsock/pkg/sockerr"
)

// Hints narrows a resolution request.
type Hints struct {
	Family   platform.Family   // FamilyUnspec accepts both
	Protocol platform.Protocol // used for service name lookups
	Passive  bool              // an empty host means the wildcard address
}

// Resolver turns host and service strings into candidate addresses.
// The zero value uses net.DefaultResolver.
type Resolver struct {
	Resolver *net.Resolver
}

var defaultResolver = &Resolver{}

// ResolveLocal returns candidates for binding on this host. An empty service
// asks for an ephemeral port. With no family preference the IPv4 wildcard
// comes before the IPv6 one.
func ResolveLocal(ctx context.Context, proto platform.Protocol, service string) ([]Addr, error) {
	return defaultResolver.Resolve(ctx, "", service, Hints{Protocol: proto, Passive: true})
}

// ResolveRemote returns candidates for connecting to host. It fails with
// sockerr.KindResolve when the resolver yields nothing.
func ResolveRemote(ctx context.Context, host, service string, proto platform.Protocol) ([]Addr, error) {
	return defaultResolver.Resolve(ctx, host, service, Hints{Protocol: proto})
}

// Resolve resolves with the default resolver.
func Resolve(ctx context.Context, host, service string, hints Hints) ([]Addr, error) {
	return defaultResolver.Resolve(ctx, host, service, hints)
}

// Resolve returns the candidates for host and service in resolver order.
// That order is platform dependent; callers that need one family must ask
// for it in hints. Every candidate is copied out of the resolver's answer
// before returning.
func (r *Resolver) Resolve(ctx context.Context, host, service string, hints Hints) ([]Addr, error) {
	target := format.HostService(host, service)

	port, err := r.lookupPort(ctx, hints.Protocol, service)
	if err != nil {
		return nil, sockerr.New(sockerr.KindResolve, "resolve", err).WithAddr(target)
	}

	ips, err := r.lookupHost(ctx, host, hints)
	if err != nil {
		return nil, sockerr.New(sockerr.KindResolve, "resolve", err).WithAddr(target)
	}

	var out []Addr
	for _, ip := range ips {
		ip = ip.Unmap()
		if hints.Family != platform.FamilyUnspec && platform.FamilyOf(ip) != hints.Family {
			continue
		}

		a, err := FromResolved(Record{IP: ip, Port: port})
		if err != nil {
			continue
		}
		out = append(out, a)
	}

	if len(out) == 0 {
		return nil, sockerr.Newf(sockerr.KindResolve, "resolve", "no %s addresses", hints.Family).WithAddr(target)
	}

	return out, nil
}

func (r *Resolver) lookupHost(ctx context.Context, host string, hints Hints) ([]netip.Addr, error) {
	if host == "" {
		return wildcardOrLoopback(hints), nil
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{ip}, nil
	}

	network := "ip"
	switch hints.Family {
	case platform.FamilyIPv4:
		network = "ip4"
	case platform.FamilyIPv6:
		network = "ip6"
	}

	return r.resolver().LookupNetIP(ctx, network, host)
}

// wildcardOrLoopback mirrors getaddrinfo with a NULL node: the wildcard for
// passive requests, loopback otherwise.
func wildcardOrLoopback(hints Hints) []netip.Addr {
	v4, v6 := netip.IPv4Unspecified(), netip.IPv6Unspecified()
	if !hints.Passive {
		v4, v6 = netip.AddrFrom4([4]byte{127, 0, 0, 1}), netip.IPv6Loopback()
	}
	return []netip.Addr{v4, v6}
}

func (r *Resolver) lookupPort(ctx context.Context, proto platform.Protocol, service string) (uint16, error) {
	if service == "" {
		return 0, nil
	}

	if n, err := strconv.ParseUint(service, 10, 16); err == nil {
		return uint16(n), nil
	}

	port, err := r.resolver().LookupPort(ctx, proto.Network(), service)
	if err != nil {
		return 0, err
	}
	return uint16(port), nil
}

func (r *Resolver) resolver() *net.Resolver {
	if r == nil || r.Resolver == nil {
		return net.DefaultResolver
	}
	return r.Resolver
}
