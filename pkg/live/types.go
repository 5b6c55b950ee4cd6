package live

// MessageType represents the type of live protocol message
type MessageType uint8

const (
	// Frame types
	FrameNodes   MessageType = 0x00
	FrameEvent   MessageType = 0x01
	FrameControl MessageType = 0x02
)

// EventType represents client-side pointer event types
type EventType uint8

const (
	EventPointerDown   EventType = 0x01
	EventPointerMove   EventType = 0x02
	EventPointerUp     EventType = 0x03
	EventPointerOver   EventType = 0x04
	EventPointerCancel EventType = 0x05
)

func (t EventType) String() string {
	switch t {
	case EventPointerDown:
		return "pointerdown"
	case EventPointerMove:
		return "pointermove"
	case EventPointerUp:
		return "pointerup"
	case EventPointerOver:
		return "pointerover"
	case EventPointerCancel:
		return "pointercancel"
	default:
		return "unknown"
	}
}

// Event represents a client-side pointer event. NodeID is only meaningful
// for down and over; X and Y only for down, move and up.
type Event struct {
	Type   EventType
	NodeID uint32
	X      int
	Y      int
}

// NodeState is the rendered state of one node sent to the client
type NodeState struct {
	ID     uint32
	X      int
	Y      int
	Cursor string
}

// Control message names
const (
	ControlHello  = "HELLO"
	ControlPing   = "PING"
	ControlPong   = "PONG"
	ControlReload = "RELOAD"
)
