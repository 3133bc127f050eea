package sock

import (
	"time"

	"estd/netsock/pkg/platform"
	"estd/netsock/pkg/sockerr"
)

// DefaultReadTimeout bounds PendingData style readiness checks.
const DefaultReadTimeout = 30 * time.Second

// WaitReadable waits at most timeout for s to become readable.
func (s *Socket) WaitReadable(timeout time.Duration) (Readiness, error) {
	if !s.Valid() {
		return ReadinessError, errClosed("poll")
	}

	ready, err := platform.Poll(s.h, timeout)
	if err != nil {
		return ReadinessError, sockerr.New(sockerr.KindPoll, "poll", err)
	}
	if !ready {
		return ReadinessTimedOut, nil
	}
	return ReadinessReady, nil
}

// Send hands b to the OS in exactly one call and reports how many bytes it
// took. A short count is not retried here; use SendAll for that. Writing to
// a connection the peer already dropped reports StatusDisconnected.
func (s *Socket) Send(b []byte) (int, Status, error) {
	if !s.Valid() {
		return 0, StatusError, errClosed("send")
	}
	if len(b) == 0 {
		return 0, StatusConnected, nil
	}

	n, err := platform.Send(s.h, b)
	switch {
	case err != nil && platform.IsDisconnect(err):
		return 0, StatusDisconnected, nil
	case err != nil:
		return 0, StatusError, sockerr.New(sockerr.KindSend, "send", err)
	case n <= 0:
		return 0, StatusDisconnected, nil
	}
	return n, StatusConnected, nil
}

// SendAll calls Send until b is written or a call does not report
// StatusConnected. It returns the total number of bytes sent.
func (s *Socket) SendAll(b []byte) (int, Status, error) {
	total := 0
	for {
		n, st, err := s.Send(b[total:])
		total += n
		if st != StatusConnected || total >= len(b) {
			return total, st, err
		}
	}
}

// Receive reads up to max bytes in one OS call and appends them to dst.
// Zero bytes means the peer shut down in order. A reset is an error.
func (s *Socket) Receive(dst []byte, max int) ([]byte, Status, error) {
	if !s.Valid() {
		return dst, StatusError, errClosed("receive")
	}
	if max <= 0 {
		return dst, StatusError, sockerr.Newf(sockerr.KindInvalidArgument, "receive", "max must be positive, got %d", max)
	}

	start := len(dst)
	if cap(dst)-start < max {
		grown := make([]byte, start, start+max)
		copy(grown, dst)
		dst = grown
	}
	buf := dst[start : start+max]

	n, err := platform.Recv(s.h, buf)
	switch {
	case err != nil:
		return dst, StatusError, sockerr.New(sockerr.KindReceive, "receive", err)
	case n == 0:
		return dst, StatusDisconnected, nil
	}
	return dst[:start+n], StatusConnected, nil
}
