// Package format renders host and port pairs for logs and error messages.
package format

import (
	"strconv"
	"strings"
)

// HostService joins a host and a service (a port number or a service name).
// IPv6 hosts are bracketed and an empty host renders as "*".
func HostService(host, service string) string {
	if host == "" {
		host = "*"
	}
	if service == "" {
		service = "0"
	}

	if strings.ContainsAny(host, ":") { // IPv6
		return "[" + host + "]:" + service
	}
	return host + ":" + service
}

// Addr joins a host and a numeric port.
func Addr(host string, port int) string {
	return HostService(host, strconv.Itoa(port))
}
