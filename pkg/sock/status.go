package sock

// Status is the outcome of a blocking network operation.
type Status int

const (
	StatusError        Status = iota - 1 // the operation failed, see the returned error
	StatusDisconnected                   // orderly close, or no data
	StatusConnected                      // the operation succeeded
)

func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusDisconnected:
		return "disconnected"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Readiness is the outcome of a bounded wait for readable data.
type Readiness int

const (
	ReadinessError    Readiness = iota - 1
	ReadinessTimedOut           // nothing arrived within the timeout
	ReadinessReady              // a read will not block
)

func (r Readiness) String() string {
	switch r {
	case ReadinessError:
		return "error"
	case ReadinessTimedOut:
		return "timed out"
	case ReadinessReady:
		return "ready"
	default:
		return "unknown"
	}
}
