// Package config holds the validated settings of the netsock commands and
// loads the optional YAML configuration file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"estd/netsock/pkg/platform"
)

// Shared holds the settings common to the listen and connect commands.
type Shared struct {
	Host        string
	Port        int
	Family      platform.Family
	ReadTimeout time.Duration
	LogFile     string
	Verbose     bool
}

// Validate reports every problem with c.
func (c *Shared) Validate() []error {
	var errors []error

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("'--port': %s", err))
	}

	if c.ReadTimeout < 0 {
		errors = append(errors, fmt.Errorf("'--read-timeout' must not be negative, got %s", c.ReadTimeout))
	}

	if c.Family < platform.FamilyUnspec || c.Family > platform.FamilyIPv6 {
		errors = append(errors, fmt.Errorf("unknown address family %d", c.Family))
	}

	return errors
}

// Service returns the port as a resolver service string.
func (c *Shared) Service() string {
	return strconv.Itoa(c.Port)
}

// ParseFamily maps "ipv4", "ipv6" and their short forms to a family. The
// empty string and "any" mean no preference.
func ParseFamily(s string) (platform.Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return platform.FamilyUnspec, nil
	case "4", "ipv4", "inet":
		return platform.FamilyIPv4, nil
	case "6", "ipv6", "inet6":
		return platform.FamilyIPv6, nil
	default:
		return platform.FamilyUnspec, fmt.Errorf("unknown address family %q", s)
	}
}
