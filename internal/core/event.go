package core

// EventKind is a notification the bus emits to subscribers.
type EventKind int

const (
	// EventConnect fires after the local session is established. No payload.
	EventConnect EventKind = iota
	// EventDisconnect fires after the local session is torn down. No payload.
	EventDisconnect
	// EventMessage delivers a newly stored message, local or synthetic.
	EventMessage
	// EventRoomChange notifies that the current room changed. Room carries the new name.
	EventRoomChange
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	case EventMessage:
		return "message"
	case EventRoomChange:
		return "roomChange"
	default:
		return "unknown"
	}
}

// Event describes what happened on the bus. Only the field matching Kind is set.
type Event struct {
	Kind    EventKind
	Room    string  // EventRoomChange
	Message Message // EventMessage
}

// Handler receives bus events. Handlers run synchronously on the emitting call.
type Handler func(Event)

// Subscription identifies one handler registration. Pass it to Bus.Off to remove it.
type Subscription struct {
	kind    EventKind
	handler Handler
	bus     *Bus
}

// Kind returns the event kind the subscription listens to.
func (s *Subscription) Kind() EventKind {
	return s.kind
}

// Active reports whether the subscription is still registered on its bus.
func (s *Subscription) Active() bool {
	if s == nil || s.bus == nil {
		return false
	}
	return s.bus.registered(s)
}
