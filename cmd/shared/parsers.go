package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var transportRe = regexp.MustCompile(`^tcp://(\[[^\]]*\]|[^:\[\]]*):(\d+)$`)

// ParseTransport parses a transport string in the format "tcp://host:port".
// IPv6 hosts go in brackets. The host can be empty or "*" to bind to all
// interfaces. Port 0 is accepted and lets the OS choose when listening.
func ParseTransport(s string) (host string, port int, err error) {
	matches := transportRe.FindStringSubmatch(s)

	if len(matches) != 3 {
		err = parsingError(s)
		return
	}

	host = matches[1]
	if strings.HasPrefix(host, "[") {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
		if host == "" {
			err = parsingError(s)
			return
		}
	}
	if host == "*" { // also counts as all interfaces
		host = ""
	}

	port, err = strconv.Atoi(matches[2])
	if err != nil || port < 0 || port > 65535 {
		err = parsingError(s)
		return
	}

	return
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'tcp://host:port'", s)
}
