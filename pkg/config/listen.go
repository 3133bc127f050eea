package config

import (
	"fmt"
	"time"
)

// Listen holds the settings only the listen command uses.
type Listen struct {
	Backlog     int
	MaxConns    int           // 0 means no limit
	SlotTimeout time.Duration // how long a new connection waits for a free slot
	Echo        bool
}

// Validate reports every problem with c.
func (c *Listen) Validate() []error {
	var errors []error

	if c.Backlog < 1 {
		errors = append(errors, fmt.Errorf("'--backlog' must be positive, got %d", c.Backlog))
	}

	if c.MaxConns < 0 {
		errors = append(errors, fmt.Errorf("'--max-conns' must not be negative, got %d", c.MaxConns))
	}

	if c.MaxConns > 0 && c.SlotTimeout <= 0 {
		errors = append(errors, fmt.Errorf("'--max-conns' needs a positive slot timeout"))
	}

	return errors
}
