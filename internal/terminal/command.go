package terminal

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/mockchat/internal/session"
)

// ActionKind is what an input line asks the client to do.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionCommand
	ActionUsers
	ActionRooms
	ActionHistory
	ActionHelp
	ActionQuit
)

// Action is a parsed input line. Command is set for ActionCommand.
type Action struct {
	Kind    ActionKind
	Command session.Command
}

// ParseLine turns one line of input into an Action. Lines not starting with
// a slash are messages.
func ParseLine(line string) (Action, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Action{Kind: ActionNone}, nil
	}
	if !strings.HasPrefix(line, "/") {
		return Action{Kind: ActionCommand, Command: session.Command{Kind: session.CommandSendMessage, Arg: line}}, nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "connect":
		return Action{Kind: ActionCommand, Command: session.Command{Kind: session.CommandConnect, Arg: arg}}, nil
	case "disconnect":
		return Action{Kind: ActionCommand, Command: session.Command{Kind: session.CommandDisconnect}}, nil
	case "join":
		if arg == "" {
			return Action{}, fmt.Errorf("usage: /join <room>")
		}
		return Action{Kind: ActionCommand, Command: session.Command{Kind: session.CommandJoinRoom, Arg: strings.TrimPrefix(arg, "#")}}, nil
	case "users":
		return Action{Kind: ActionUsers}, nil
	case "rooms":
		return Action{Kind: ActionRooms}, nil
	case "history":
		return Action{Kind: ActionHistory}, nil
	case "help", "?":
		return Action{Kind: ActionHelp}, nil
	case "quit", "exit":
		return Action{Kind: ActionQuit}, nil
	default:
		return Action{}, fmt.Errorf("unknown command /%s, try /help", name)
	}
}
