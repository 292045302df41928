package proto

import "encoding/json"

// Inbound is the envelope for frames coming from a view client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeConnect    = "connect"
	InboundTypeDisconnect = "disconnect"
	InboundTypeJoin       = "join"
	InboundTypeMsg        = "msg"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventState        = "state"
	EventMessage      = "message"
	EventNotification = "notification"
)

// ConnectData opens the local session under User.
type ConnectData struct {
	User string `json:"user"`
}

// JoinData requests to switch to a specific room.
type JoinData struct {
	Room string `json:"room"`
}

// MsgData is a chat message typed by the user.
type MsgData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for frames sent to a view client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessageData is a single chat message.
type MessageData struct {
	ID   string `json:"id"`
	Room string `json:"room"`
	User string `json:"user"`
	Text string `json:"text"`
	TS   int64  `json:"ts"` // epoch milliseconds
}

// UserData is a roster entry.
type UserData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// StateData mirrors the session snapshot.
type StateData struct {
	Reason      string        `json:"reason,omitempty"`
	CurrentUser *UserData     `json:"current_user"`
	Messages    []MessageData `json:"messages"`
	Users       []UserData    `json:"users"`
	Rooms       []string      `json:"rooms"`
	CurrentRoom string        `json:"current_room"`
	Connected   bool          `json:"connected"`
}

// NotificationData is a toast for the view.
type NotificationData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// RoomData is a room with its stored message count.
type RoomData struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
	Current  bool   `json:"current"`
}
