package presence

import "sync/atomic"

// State is one room's liveness as last observed.
//
// Init absorbs the first observation without notifying, so a restart never
// replays edges the channel already saw. Trap is the failure absorber: a
// corrupted state decodes to Trap and stays there.
type State uint8

const (
	StateInit State = iota
	StateOn
	StateOff
	StateTrap
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateOn:
		return "on"
	case StateOff:
		return "off"
	case StateTrap:
		return "trap"
	}
	return "trap"
}

// Event is an edge produced by one state transition.
type Event uint8

const (
	EventNone Event = iota
	EventWentLive
	EventWentOffline
)

// String returns the edge name used in logs and metrics labels.
func (e Event) String() string {
	switch e {
	case EventWentLive:
		return "online"
	case EventWentOffline:
		return "offline"
	}
	return "none"
}

// step applies one liveness observation to a state.
//
// Notifications are edge-triggered: only On->Off and Off->On produce an
// event. Init swallows the first edge and Trap absorbs everything.
func step(s State, live bool) (State, Event) {
	switch s {
	case StateInit:
		if live {
			return StateOn, EventNone
		}
		return StateOff, EventNone
	case StateOn:
		if live {
			return StateOn, EventNone
		}
		return StateOff, EventWentOffline
	case StateOff:
		if live {
			return StateOn, EventWentLive
		}
		return StateOff, EventNone
	}
	return StateTrap, EventNone
}

// stateCell holds a State behind an atomic.
//
// The room's poll goroutine is the only writer; readers may inspect the
// state from anywhere. An out-of-range stored value decodes to Trap
// rather than aliasing a real state.
type stateCell struct {
	v atomic.Int32
}

// load returns the current state.
func (c *stateCell) load() State {
	raw := c.v.Load()
	if raw < 0 || raw > int32(StateTrap) {
		return StateTrap
	}
	return State(raw)
}

// store records the next state.
func (c *stateCell) store(s State) {
	c.v.Store(int32(s))
}
