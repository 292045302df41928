package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/session"
)

const updateBuffer = 256

// Client is an interactive line-based chat view over a session.
type Client struct {
	sess *session.Session
	bus  *core.Bus
	in   io.Reader
	r    *Renderer
	log  *zerolog.Logger

	// readerDone is closed when the input goroutine of the last Run exits.
	readerDone chan struct{}
}

// NewClient creates a terminal client reading commands from in and rendering with r.
func NewClient(sess *session.Session, bus *core.Bus, in io.Reader, r *Renderer, logger *zerolog.Logger) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{sess: sess, bus: bus, in: in, r: r, log: logger}
}

// Run connects as username, or asks for one when empty, and processes input
// until /quit, end of input or ctx cancellation. The session is disconnected
// on return.
func (c *Client) Run(ctx context.Context, username string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, stop := c.sess.Watch(updateBuffer)
	defer stop()

	lines := make(chan string)
	readErr := make(chan error, 1)
	readerDone := make(chan struct{})
	c.readerDone = readerDone
	go func() {
		defer close(readerDone)
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	if username == "" {
		fmt.Fprint(c.r.out, "Enter your username: ")
		select {
		case line, ok := <-lines:
			if !ok {
				return c.finish(updates, readErr)
			}
			username = line
		case <-ctx.Done():
			return c.finish(updates, nil)
		}
	}
	if err := c.sess.Connect(username); err != nil {
		c.log.Debug().Err(err).Msg("initial connect failed")
		c.r.Info("Use /connect <name> to try again, /help for commands.")
	}

	for {
		select {
		case <-ctx.Done():
			return c.finish(updates, nil)
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			c.render(u)
		case line, ok := <-lines:
			if !ok {
				return c.finish(updates, readErr)
			}
			if quit := c.handleLine(line); quit {
				return c.finish(updates, nil)
			}
		}
	}
}

func (c *Client) handleLine(line string) bool {
	action, err := ParseLine(line)
	if err != nil {
		c.r.Error(err)
		return false
	}

	switch action.Kind {
	case ActionNone:
	case ActionQuit:
		return true
	case ActionHelp:
		c.r.Help()
	case ActionUsers:
		c.r.Users(c.sess.State())
	case ActionRooms:
		c.r.Rooms(c.bus.Rooms(), c.bus.MessageCounts(), c.sess.State().CurrentRoom)
	case ActionHistory:
		c.r.History(c.sess.State())
	case ActionCommand:
		if action.Command.Kind == session.CommandSendMessage && !c.sess.State().Connected {
			c.r.Info("Not connected. Use /connect <name> first.")
			return false
		}
		if err := c.sess.Execute(action.Command); err != nil {
			c.log.Debug().Err(err).Msg("command failed")
			// connect and join failures already surface as notifications
			if action.Command.Kind != session.CommandConnect && action.Command.Kind != session.CommandJoinRoom {
				c.r.Error(err)
			}
		}
	}
	return false
}

func (c *Client) render(u session.Update) {
	switch u.Reason {
	case session.ReasonConnect, session.ReasonRoomChange:
		c.r.History(u.State)
	case session.ReasonMessage:
		if u.Message != nil {
			c.r.Message(u.State, *u.Message)
		}
	case session.ReasonNotification:
		if u.Notification != nil {
			c.r.Notification(*u.Notification)
		}
	case session.ReasonDisconnect:
	}
}

// finish disconnects and flushes the remaining updates.
func (c *Client) finish(updates <-chan session.Update, readErr <-chan error) error {
	if c.sess.State().Connected {
		c.sess.Disconnect()
	}
drain:
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				break drain
			}
			c.render(u)
		default:
			break drain
		}
	}

	if readErr == nil {
		return nil
	}
	select {
	case err := <-readErr:
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	default:
	}
	return nil
}
