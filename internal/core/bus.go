package core

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/mockchat/internal/metrics"
	"github.com/vovakirdan/mockchat/internal/utils"
)

// Options configures a Bus. Zero values fall back to the demo defaults.
type Options struct {
	Rooms       []string
	DefaultRoom string
	Schedule    *Schedule
	Seed        *Seed
	Clock       clock.Clock
	Rand        *rand.Rand
	Logger      *zerolog.Logger
}

// Session is the local participant's connected identity.
type Session struct {
	User        User
	ConnectedAt time.Time
}

// Bus is the simulated chat channel. It owns the message store, the roster,
// the room set and the listener registry, and injects synthetic messages
// from other participants while a session is connected.
type Bus struct {
	// emitMu serializes every mutation together with its dispatch, so user
	// calls and scheduler fires never interleave.
	emitMu sync.Mutex

	mu          sync.RWMutex
	rooms       RoomSet
	currentRoom string
	messages    []Message
	users       []User
	session     *Session
	listeners   map[EventKind][]*Subscription

	phrases  []string
	schedule Schedule
	sched    *Scheduler
	clock    clock.Clock
	rnd      *rand.Rand
	log      *zerolog.Logger
}

// NewBus creates a bus seeded with its initial roster and history.
func NewBus(opts Options) *Bus {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	if len(opts.Rooms) == 0 {
		opts.Rooms = DefaultRooms
	}
	rooms := NewRoomSet(opts.Rooms...)
	if rooms.Empty() {
		rooms = NewRoomSet(DefaultRooms...)
	}
	if opts.DefaultRoom == "" || !rooms.Has(opts.DefaultRoom) {
		opts.DefaultRoom = rooms.Names()[0]
	}
	schedule := DefaultSchedule()
	if opts.Schedule != nil {
		schedule = opts.Schedule.normalized()
	}
	seed := DefaultSeed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	phrases := seed.Phrases
	if len(phrases) == 0 {
		phrases = DefaultPhrases()
	}

	users, messages := seed.materialize(opts.Clock.Now())
	messages = lo.Filter(messages, func(m Message, _ int) bool {
		return rooms.Has(m.Room)
	})

	return &Bus{
		rooms:       rooms,
		currentRoom: opts.DefaultRoom,
		messages:    messages,
		users:       users,
		listeners:   make(map[EventKind][]*Subscription),
		phrases:     slices.Clone(phrases),
		schedule:    schedule,
		sched:       NewScheduler(opts.Clock),
		clock:       opts.Clock,
		rnd:         opts.Rand,
		log:         opts.Logger,
	}
}

// Connect establishes the local session under username and starts the
// synthetic message generator.
func (b *Bus) Connect(username string) (User, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return User{}, coreError(ErrCodeInvalidUsername, "username is required", ErrInvalidUsername)
	}

	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	if b.session != nil {
		b.mu.Unlock()
		return User{}, coreError(ErrCodeAlreadyConnected, "already connected", ErrAlreadyConnected)
	}
	user := User{ID: utils.NewID("user"), Username: name}
	b.session = &Session{User: user, ConnectedAt: b.clock.Now()}
	b.users = append(b.users, user)
	b.mu.Unlock()

	metrics.SessionsConnected.Inc()
	b.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("connected")

	b.emit(Event{Kind: EventConnect})
	b.sched.Schedule(b.schedule.first(b.rnd), b.fire)
	return user, nil
}

// Disconnect stops the generator, removes the local user from the roster,
// emits EventDisconnect and then drops every listener registration.
// Calling it without a session does nothing.
func (b *Bus) Disconnect() {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.sched.Cancel()

	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return
	}
	id := b.session.User.ID
	b.users = lo.Reject(b.users, func(u User, _ int) bool {
		return u.ID == id
	})
	b.session = nil
	b.mu.Unlock()

	metrics.SessionsDisconnected.Inc()
	b.log.Info().Str("user_id", id).Msg("disconnected")

	b.emit(Event{Kind: EventDisconnect})

	b.mu.Lock()
	b.listeners = make(map[EventKind][]*Subscription)
	b.mu.Unlock()
}

// JoinRoom switches the current room and emits EventRoomChange.
func (b *Bus) JoinRoom(room string) error {
	if !b.rooms.Has(room) {
		return coreError(ErrCodeRoomNotFound, "room "+room+" does not exist", ErrRoomNotFound)
	}

	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	b.currentRoom = room
	b.mu.Unlock()

	metrics.RoomChanges.WithLabelValues(room).Inc()
	b.log.Info().Str("room", room).Msg("joined room")

	b.emit(Event{Kind: EventRoomChange, Room: room})
	return nil
}

// SendMessage stores text as a message from the local user in the current
// room and emits EventMessage.
func (b *Bus) SendMessage(text string) (Message, error) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return Message{}, coreError(ErrCodeNotConnected, "not connected", ErrNotConnected)
	}
	msg := Message{
		ID:        utils.NewID("msg"),
		Text:      text,
		Username:  b.session.User.Username,
		Room:      b.currentRoom,
		Timestamp: b.clock.Now().UnixMilli(),
	}
	b.messages = append(b.messages, msg)
	b.mu.Unlock()

	metrics.MessagesStored.WithLabelValues(metrics.OriginLocal).Inc()

	b.emit(Event{Kind: EventMessage, Message: msg})
	return msg, nil
}

// On registers handler for kind. Handlers of one kind run in registration order.
func (b *Bus) On(kind EventKind, handler Handler) *Subscription {
	sub := &Subscription{kind: kind, handler: handler, bus: b}

	b.mu.Lock()
	b.listeners[kind] = append(b.listeners[kind], sub)
	b.mu.Unlock()
	return sub
}

// Off removes sub. Removing an unknown or already removed subscription is a no-op.
func (b *Bus) Off(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[sub.kind]
	if idx := slices.Index(subs, sub); idx >= 0 {
		b.listeners[sub.kind] = slices.Delete(slices.Clone(subs), idx, idx+1)
	}
}

// Rooms returns the static room list.
func (b *Bus) Rooms() []string {
	return b.rooms.Names()
}

// HasRoom reports whether room belongs to the room set.
func (b *Bus) HasRoom(room string) bool {
	return b.rooms.Has(room)
}

// Messages returns the stored messages of room in insertion order.
func (b *Bus) Messages(room string) []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return lo.Filter(b.messages, func(m Message, _ int) bool {
		return m.Room == room
	})
}

// MessageCounts returns the number of stored messages per room.
func (b *Bus) MessageCounts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return lo.CountValuesBy(b.messages, func(m Message) string {
		return m.Room
	})
}

// Users returns the roster in insertion order.
func (b *Bus) Users() []User {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.users)
}

// CurrentUser returns the local user and whether a session is active.
func (b *Bus) CurrentUser() (User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.session == nil {
		return User{}, false
	}
	return b.session.User, true
}

// CurrentRoom returns the room new messages are posted to.
func (b *Bus) CurrentRoom() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.currentRoom
}

// Connected reports whether a local session is active.
func (b *Bus) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session != nil
}

// GeneratorPending reports whether a synthetic message is scheduled.
func (b *Bus) GeneratorPending() bool {
	return b.sched.Pending()
}

// Close stops the generator without touching the session.
func (b *Bus) Close() {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	b.sched.Cancel()
}

func (b *Bus) registered(sub *Subscription) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Contains(b.listeners[sub.kind], sub)
}

// emit runs the handlers of ev.Kind. Caller holds emitMu but not mu.
func (b *Bus) emit(ev Event) {
	b.mu.RLock()
	subs := slices.Clone(b.listeners[ev.Kind])
	b.mu.RUnlock()

	for _, sub := range subs {
		// a handler may have removed a later one
		if !b.registered(sub) {
			continue
		}
		metrics.EventsDispatched.WithLabelValues(ev.Kind.String()).Inc()
		sub.handler(ev)
	}
}

// fire produces one synthetic message and re-arms the generator.
func (b *Bus) fire(token uint64) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	if !b.sched.Valid(token) {
		return
	}

	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		b.sched.Release(token)
		b.log.Debug().Msg("synthetic message skipped: no session")
		return
	}
	localID := b.session.User.ID
	candidates := lo.Filter(b.users, func(u User, _ int) bool {
		return u.ID != localID && !u.IsSystem()
	})
	if len(candidates) == 0 {
		b.mu.Unlock()
		b.log.Debug().Msg("synthetic message skipped: no other participants")
		b.sched.Schedule(b.schedule.rearm(b.rnd), b.fire)
		return
	}
	author := candidates[b.rnd.IntN(len(candidates))]
	msg := Message{
		ID:        utils.NewID("msg"),
		Text:      b.phrases[b.rnd.IntN(len(b.phrases))],
		Username:  author.Username,
		Room:      b.currentRoom,
		Timestamp: b.clock.Now().UnixMilli(),
	}
	b.messages = append(b.messages, msg)
	b.mu.Unlock()

	metrics.MessagesStored.WithLabelValues(metrics.OriginSynthetic).Inc()
	b.log.Debug().Str("user", author.Username).Str("room", msg.Room).Msg("synthetic message")

	b.emit(Event{Kind: EventMessage, Message: msg})
	b.sched.Schedule(b.schedule.rearm(b.rnd), b.fire)
}
