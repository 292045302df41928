package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/mockchat/internal/core"
)

const defaultWatchBuffer = 32

// Session turns bus events into a State snapshot for views and exposes the
// user actions, validating input before it reaches the bus.
type Session struct {
	bus       *core.Bus
	log       *zerolog.Logger
	notifiers []Notifier

	mu       sync.Mutex
	state    State
	subs     []*core.Subscription
	watchers map[chan Update]struct{}
	closed   bool
}

// New builds a session over bus and subscribes to its events.
func New(bus *core.Bus, logger *zerolog.Logger, notifiers ...Notifier) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Session{
		bus:       bus,
		log:       logger,
		notifiers: notifiers,
		state: State{
			Rooms:       bus.Rooms(),
			CurrentRoom: bus.CurrentRoom(),
		},
		watchers: make(map[chan Update]struct{}),
	}
	s.mu.Lock()
	s.subscribeLocked()
	s.mu.Unlock()
	return s
}

// State returns a copy of the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Connect opens the session. Blank usernames are rejected with a notification
// and never reach the bus.
func (s *Session) Connect(username string) error {
	name := strings.TrimSpace(username)
	if name == "" {
		s.notify(errorNotification("Please enter a valid username."))
		return core.ErrInvalidUsername
	}

	s.ensureSubscribed()
	user, err := s.bus.Connect(name)
	if err != nil {
		s.log.Warn().Err(err).Str("username", name).Msg("connect rejected")
		s.notify(errorNotification(describe(err)))
		return err
	}

	// a disconnect dispatched concurrently may have dropped the listeners
	// before the connect event went out
	s.ensureSubscribed()
	if current, ok := s.bus.CurrentUser(); ok && current.ID == user.ID && !s.State().Connected {
		s.log.Debug().Str("user_id", user.ID).Msg("connect event missed, resyncing")
		s.handleConnect(core.Event{Kind: core.EventConnect})
	}
	return nil
}

// Disconnect closes the session.
func (s *Session) Disconnect() {
	s.bus.Disconnect()
}

// SendMessage posts text to the active room. Blank text or a closed session is a no-op.
func (s *Session) SendMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	s.mu.Lock()
	connected := s.state.Connected
	s.mu.Unlock()
	if !connected {
		return nil
	}

	if _, err := s.bus.SendMessage(text); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// JoinRoom switches the active room. Joining the active room is a no-op.
func (s *Session) JoinRoom(room string) error {
	s.mu.Lock()
	current := s.state.CurrentRoom
	s.mu.Unlock()
	if room == current {
		return nil
	}

	s.ensureSubscribed()
	if err := s.bus.JoinRoom(room); err != nil {
		s.notify(errorNotification(describe(err)))
		return err
	}

	// same as Connect: the room change event may have had no listeners
	s.ensureSubscribed()
	if s.bus.CurrentRoom() == room && s.State().CurrentRoom != room {
		s.log.Debug().Str("room", room).Msg("room change event missed, resyncing")
		s.handleRoomChange(core.Event{Kind: core.EventRoomChange, Room: room})
	}
	return nil
}

// Watch registers a buffered channel receiving every Update. Updates are
// dropped for a watcher whose buffer is full. The returned func unregisters
// the watcher and closes the channel.
func (s *Session) Watch(buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = defaultWatchBuffer
	}
	ch := make(chan Update, buffer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.watchers[ch]; ok {
				delete(s.watchers, ch)
				close(ch)
			}
		})
	}
}

// Close unsubscribes from the bus and closes every watcher.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		s.bus.Off(sub)
	}
	s.subs = nil
	for ch := range s.watchers {
		close(ch)
	}
	clear(s.watchers)
}

// ensureSubscribed restores the bus subscriptions dropped by a disconnect.
func (s *Session) ensureSubscribed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if len(s.subs) > 0 && lo.EveryBy(s.subs, func(sub *core.Subscription) bool { return sub.Active() }) {
		return
	}
	for _, sub := range s.subs {
		s.bus.Off(sub)
	}
	s.subscribeLocked()
	s.log.Debug().Msg("session subscriptions restored")
}

func (s *Session) subscribeLocked() {
	s.subs = []*core.Subscription{
		s.bus.On(core.EventConnect, s.handleConnect),
		s.bus.On(core.EventDisconnect, s.handleDisconnect),
		s.bus.On(core.EventMessage, s.handleMessage),
		s.bus.On(core.EventRoomChange, s.handleRoomChange),
	}
}

func (s *Session) handleConnect(core.Event) {
	s.mu.Lock()
	s.state.Connected = true
	if user, ok := s.bus.CurrentUser(); ok {
		s.state.CurrentUser = &user
	}
	s.state.Users = s.bus.Users()
	s.state.Messages = s.bus.Messages(s.state.CurrentRoom)
	s.publishLocked(Update{Reason: ReasonConnect})
	s.mu.Unlock()

	s.notify(Notification{
		Title:       "Connected",
		Description: "You are now connected to the chat server.",
		Variant:     VariantDefault,
	})
}

func (s *Session) handleDisconnect(core.Event) {
	s.mu.Lock()
	s.state.Connected = false
	s.state.CurrentUser = nil
	s.publishLocked(Update{Reason: ReasonDisconnect})
	s.mu.Unlock()

	s.notify(Notification{
		Title:       "Disconnected",
		Description: "You have been disconnected from the chat server.",
		Variant:     VariantDestructive,
	})
}

func (s *Session) handleMessage(ev core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// other rooms stay in the bus store only
	if ev.Message.Room != s.state.CurrentRoom {
		return
	}
	s.state.Messages = append(s.state.Messages, ev.Message)
	msg := ev.Message
	s.publishLocked(Update{Reason: ReasonMessage, Message: &msg})
}

func (s *Session) handleRoomChange(ev core.Event) {
	s.mu.Lock()
	s.state.CurrentRoom = ev.Room
	s.state.Messages = s.bus.Messages(ev.Room)
	s.publishLocked(Update{Reason: ReasonRoomChange})
	s.mu.Unlock()

	s.notify(Notification{
		Title:       "Room Changed",
		Description: fmt.Sprintf("You joined the %s room.", ev.Room),
		Variant:     VariantDefault,
	})
}

func (s *Session) notify(n Notification) {
	for _, notifier := range s.notifiers {
		notifier.Notify(n)
	}

	s.mu.Lock()
	s.publishLocked(Update{Reason: ReasonNotification, Notification: &n})
	s.mu.Unlock()
}

// publishLocked stamps u with the current state and fans it out. Caller holds mu.
func (s *Session) publishLocked(u Update) {
	if len(s.watchers) == 0 {
		return
	}
	u.State = s.state.clone()
	for ch := range s.watchers {
		select {
		case ch <- u:
		default:
			// Drop if slow consumer.
		}
	}
}

func describe(err error) string {
	switch core.ErrorCode(err) {
	case core.ErrCodeAlreadyConnected:
		return "You are already connected."
	case core.ErrCodeRoomNotFound:
		return err.Error() + "."
	default:
		return err.Error()
	}
}
