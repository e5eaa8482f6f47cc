package bridge

import "time"

// Event is a loop-level transition.
type Event string

const (
	// EventLinkUp is reported on the first valid reading after start
	// or after a failsafe trip.
	EventLinkUp Event = "link-up"
	// EventLinkLost is reported when the failsafe trips.
	EventLinkLost Event = "link-lost"
	// EventShutdown is reported once when the loop exits.
	EventShutdown Event = "shutdown"
)

// Sink consumes loop events. Report must not block: it is called from
// the control loop between actuator writes.
type Sink interface {
	Report(ev Event, at time.Time)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event, time.Time)

// Report implements Sink.
func (f SinkFunc) Report(ev Event, at time.Time) { f(ev, at) }
