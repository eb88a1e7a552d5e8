package netlink

import (
	"time"

	"github.com/hako/durafmt"
)

// State is the lifecycle state of the server connection.
type State int

const (
	Idle State = iota
	Connecting
	Open
	Closed
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// Status is a point-in-time view of the connection.
type Status struct {
	State   State
	Since   time.Time
	Err     error
	Attempt int
	// RetryIn is set while waiting to redial.
	RetryIn time.Duration
}

// Text is the human readable status line.
func (s Status) Text() string {
	switch s.State {
	case Connecting:
		if s.Attempt > 0 {
			return "Reconnecting..."
		}
		return "Connecting..."
	case Open:
		return "WebSocket opened"
	case Closed, Errored:
		if s.RetryIn > 0 {
			return "WebSocket closed, retrying in " + durafmt.Parse(s.RetryIn).LimitFirstN(1).String()
		}
		return "WebSocket closed"
	}
	return "Not connected"
}

// Uptime returns how long the connection has been open, or zero.
func (s Status) Uptime(now time.Time) time.Duration {
	if s.State != Open || s.Since.IsZero() {
		return 0
	}
	return now.Sub(s.Since)
}

// Backoff returns the wait before redial number failures+1. The delay
// doubles from min and is capped at max.
func Backoff(failures int, min, max time.Duration) time.Duration {
	if min <= 0 {
		return 0
	}
	d := min
	for i := 0; i < failures && d < max; i++ {
		d *= 2
	}
	if max > 0 && d > max {
		d = max
	}
	return d
}
