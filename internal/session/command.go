package session

import "fmt"

// CommandKind describes what the user wants to do.
type CommandKind int

const (
	// CommandConnect opens the session under Arg as username.
	CommandConnect CommandKind = iota
	// CommandDisconnect closes the session.
	CommandDisconnect
	// CommandSendMessage posts Arg to the active room.
	CommandSendMessage
	// CommandJoinRoom switches to room Arg.
	CommandJoinRoom
)

// Command represents an action requested by a view.
type Command struct {
	Kind CommandKind
	Arg  string
}

// Execute dispatches cmd to the matching action.
func (s *Session) Execute(cmd Command) error {
	switch cmd.Kind {
	case CommandConnect:
		return s.Connect(cmd.Arg)
	case CommandDisconnect:
		s.Disconnect()
		return nil
	case CommandSendMessage:
		return s.SendMessage(cmd.Arg)
	case CommandJoinRoom:
		return s.JoinRoom(cmd.Arg)
	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}
