package session

import (
	"slices"

	"github.com/vovakirdan/mockchat/internal/core"
)

// State is the view-facing snapshot of the chat session.
type State struct {
	CurrentUser *core.User
	Messages    []core.Message // active room only
	Users       []core.User
	Rooms       []string
	CurrentRoom string
	Connected   bool
}

func (s State) clone() State {
	out := s
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	out.Messages = slices.Clone(s.Messages)
	out.Users = slices.Clone(s.Users)
	out.Rooms = slices.Clone(s.Rooms)
	return out
}

// IsCurrentUser reports whether u is the local participant.
func (s State) IsCurrentUser(u core.User) bool {
	return s.CurrentUser != nil && s.CurrentUser.ID == u.ID
}

// Reason tells watchers what produced an Update.
type Reason string

const (
	ReasonConnect      Reason = "connect"
	ReasonDisconnect   Reason = "disconnect"
	ReasonMessage      Reason = "message"
	ReasonRoomChange   Reason = "roomChange"
	ReasonNotification Reason = "notification"
)

// Update is delivered to watchers after every state change or notification.
type Update struct {
	Reason       Reason
	State        State
	Message      *core.Message // set for ReasonMessage
	Notification *Notification // set for ReasonNotification
}
