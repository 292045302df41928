package session_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/session"
	"github.com/vovakirdan/mockchat/internal/session/mocks"
)

var (
	connected = session.Notification{
		Title:       "Connected",
		Description: "You are now connected to the chat server.",
		Variant:     session.VariantDefault,
	}
	disconnected = session.Notification{
		Title:       "Disconnected",
		Description: "You have been disconnected from the chat server.",
		Variant:     session.VariantDestructive,
	}
	invalidUsername = session.Notification{
		Title:       "Error",
		Description: "Please enter a valid username.",
		Variant:     session.VariantDestructive,
	}
)

func roomChanged(room string) session.Notification {
	return session.Notification{
		Title:       "Room Changed",
		Description: "You joined the " + room + " room.",
		Variant:     session.VariantDefault,
	}
}

func newTestSession(t *testing.T, notifier session.Notifier) (*core.Bus, *session.Session) {
	t.Helper()
	return newTestSessionWithClock(t, notifier, clock.NewMock())
}

func newTestSessionWithClock(t *testing.T, notifier session.Notifier, clk clock.Clock) (*core.Bus, *session.Session) {
	t.Helper()

	bus := core.NewBus(core.Options{
		Clock: clk,
		Rand:  rand.New(rand.NewPCG(1, 2)),
	})
	sess := session.New(bus, nil, notifier)
	t.Cleanup(func() {
		sess.Close()
		bus.Close()
	})
	return bus, sess
}

func ids(msgs []core.Message) []string {
	return lo.Map(msgs, func(m core.Message, _ int) string { return m.ID })
}

func TestConnect_LoadsActiveRoomHistory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(connected).Times(1)

	bus, sess := newTestSession(t, notifier)

	initial := sess.State()
	req.False(initial.Connected)
	req.Nil(initial.CurrentUser)
	req.Equal("general", initial.CurrentRoom)
	req.Equal([]string{"general", "random", "tech", "support"}, initial.Rooms)

	req.NoError(sess.Connect("Alice"))

	state := sess.State()
	req.True(state.Connected)
	req.NotNil(state.CurrentUser)
	req.Equal("Alice", state.CurrentUser.Username)
	req.Equal([]string{"1", "2", "3", "4"}, ids(state.Messages))
	req.Equal(bus.Users(), state.Users)
	req.True(state.IsCurrentUser(*state.CurrentUser))
}

func TestConnect_BlankUsernameIsRejected(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(invalidUsername).Times(2)

	bus, sess := newTestSession(t, notifier)
	roster := bus.Users()

	var connects int
	bus.On(core.EventConnect, func(core.Event) { connects++ })

	req.ErrorIs(sess.Connect(""), core.ErrInvalidUsername)
	req.ErrorIs(sess.Connect("   "), core.ErrInvalidUsername)

	req.Zero(connects)
	req.False(bus.Connected())
	req.Equal(roster, bus.Users())
	req.False(sess.State().Connected)
}

func TestConnect_TwiceSurfacesError(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	gomock.InOrder(
		notifier.EXPECT().Notify(connected),
		notifier.EXPECT().Notify(session.Notification{
			Title:       "Error",
			Description: "You are already connected.",
			Variant:     session.VariantDestructive,
		}),
	)

	_, sess := newTestSession(t, notifier)

	req.NoError(sess.Connect("Alice"))
	req.ErrorIs(sess.Connect("Alice"), core.ErrAlreadyConnected)
}

func TestJoinRoom_ReloadsHistory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	gomock.InOrder(
		notifier.EXPECT().Notify(connected),
		notifier.EXPECT().Notify(roomChanged("tech")),
	)

	_, sess := newTestSession(t, notifier)

	req.NoError(sess.Connect("Bob"))
	req.NoError(sess.JoinRoom("tech"))

	state := sess.State()
	req.Equal("tech", state.CurrentRoom)
	req.Equal([]string{"6"}, ids(state.Messages))

	// Same room: no reload, no notification.
	req.NoError(sess.JoinRoom("tech"))
	req.Equal([]string{"6"}, ids(sess.State().Messages))
}

func TestJoinRoom_UnknownRoomNotifies(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	var got session.Notification
	notifier.EXPECT().Notify(gomock.Any()).Do(func(n session.Notification) { got = n }).Times(1)

	_, sess := newTestSession(t, notifier)

	req.ErrorIs(sess.JoinRoom("ghost"), core.ErrRoomNotFound)
	req.Equal("general", sess.State().CurrentRoom)
	req.Equal("Error", got.Title)
	req.Equal(session.VariantDestructive, got.Variant)
	req.Contains(got.Description, "ghost")
}

func TestSendMessage_AppendsToVisibleList(t *testing.T) {
	req := require.New(t)
	notifier := session.NotifierFunc(func(session.Notification) {})
	_, sess := newTestSessionWithClock(t, notifier, clock.New())

	req.NoError(sess.Connect("Carol"))
	req.NoError(sess.JoinRoom("random"))

	callTime := time.Now().UnixMilli()
	req.NoError(sess.SendMessage("hi"))

	msgs := sess.State().Messages
	req.Len(msgs, 2)
	last := msgs[len(msgs)-1]
	req.Equal("hi", last.Text)
	req.Equal("Carol", last.Username)
	req.Equal("random", last.Room)
	req.NotEmpty(last.ID)
	req.GreaterOrEqual(last.Timestamp, callTime)
}

func TestSendMessage_NoOpCases(t *testing.T) {
	req := require.New(t)
	notifier := session.NotifierFunc(func(session.Notification) {})
	bus, sess := newTestSession(t, notifier)

	req.NoError(sess.SendMessage("ignored while disconnected"))
	req.Len(bus.Messages("general"), 4)

	req.NoError(sess.Connect("Dan"))
	req.NoError(sess.SendMessage(""))
	req.NoError(sess.SendMessage(" \t "))
	req.Len(bus.Messages("general"), 4)
	req.Len(sess.State().Messages, 4)
}

func TestDisconnect_ClearsUserAndReconnectResubscribes(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	gomock.InOrder(
		notifier.EXPECT().Notify(connected),
		notifier.EXPECT().Notify(disconnected),
		notifier.EXPECT().Notify(connected),
	)

	bus, sess := newTestSession(t, notifier)

	req.NoError(sess.Connect("Eve"))
	first := sess.State().CurrentUser
	req.NotNil(first)

	sess.Disconnect()
	state := sess.State()
	req.False(state.Connected)
	req.Nil(state.CurrentUser)
	for _, u := range bus.Users() {
		req.NotEqual(first.ID, u.ID)
	}

	req.NoError(sess.Connect("Eve"))
	state = sess.State()
	req.True(state.Connected)
	req.NotEqual(first.ID, state.CurrentUser.ID)

	req.NoError(sess.SendMessage("back again"))
	req.Equal("back again", sess.State().Messages[len(sess.State().Messages)-1].Text)
}

func TestMessagesForInactiveRoomAreIgnored(t *testing.T) {
	req := require.New(t)
	notifier := session.NotifierFunc(func(session.Notification) {})
	bus, sess := newTestSession(t, notifier)

	req.NoError(sess.Connect("Faye"))
	sess.Disconnect()

	// The session is not listening, so it keeps showing general.
	req.NoError(bus.JoinRoom("tech"))
	req.Equal("general", sess.State().CurrentRoom)

	req.NoError(sess.Connect("Faye"))
	req.NoError(sess.SendMessage("lost in tech"))

	req.Equal([]string{"1", "2", "3", "4"}, ids(sess.State().Messages))
	techMsgs := bus.Messages("tech")
	req.Equal("lost in tech", techMsgs[len(techMsgs)-1].Text)
}

func TestWatch_ReceivesUpdates(t *testing.T) {
	req := require.New(t)
	notifier := session.NotifierFunc(func(session.Notification) {})
	_, sess := newTestSession(t, notifier)

	updates, stop := sess.Watch(16)
	defer stop()

	req.NoError(sess.Connect("Gus"))

	first := <-updates
	req.Equal(session.ReasonConnect, first.Reason)
	req.True(first.State.Connected)

	second := <-updates
	req.Equal(session.ReasonNotification, second.Reason)
	req.NotNil(second.Notification)
	req.Equal("Connected", second.Notification.Title)

	req.NoError(sess.SendMessage("hello"))
	third := <-updates
	req.Equal(session.ReasonMessage, third.Reason)
	req.NotNil(third.Message)
	req.Equal("hello", third.Message.Text)
	req.Len(third.State.Messages, 5)

	stop()
	stop()
	_, ok := <-updates
	req.False(ok)
}

func TestClose_StopsWatchersAndSubscriptions(t *testing.T) {
	req := require.New(t)
	notifier := session.NotifierFunc(func(session.Notification) {})
	bus, sess := newTestSession(t, notifier)

	updates, _ := sess.Watch(4)
	sess.Close()

	_, ok := <-updates
	req.False(ok)

	_, err := bus.Connect("Hank")
	req.NoError(err)
	req.False(sess.State().Connected)

	late, _ := sess.Watch(1)
	_, ok = <-late
	req.False(ok)
}

func TestExecute_DispatchesCommands(t *testing.T) {
	req := require.New(t)
	notifier := session.NotifierFunc(func(session.Notification) {})
	_, sess := newTestSession(t, notifier)

	req.NoError(sess.Execute(session.Command{Kind: session.CommandConnect, Arg: "Ivy"}))
	req.NoError(sess.Execute(session.Command{Kind: session.CommandJoinRoom, Arg: "support"}))
	req.NoError(sess.Execute(session.Command{Kind: session.CommandSendMessage, Arg: "help"}))

	state := sess.State()
	req.Equal("support", state.CurrentRoom)
	req.Equal([]string{"7"}, ids(state.Messages[:1]))
	req.Equal("help", state.Messages[1].Text)

	req.NoError(sess.Execute(session.Command{Kind: session.CommandDisconnect}))
	req.False(sess.State().Connected)

	req.Error(sess.Execute(session.Command{Kind: session.CommandKind(42)}))
}

func TestJoinRoom_DuringDisconnectDispatchStaysInSync(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any()).AnyTimes()

	bus, sess := newTestSession(t, notifier)
	req.NoError(sess.Connect("Fay"))

	joined := make(chan error, 1)
	bus.On(core.EventDisconnect, func(core.Event) {
		go func() { joined <- sess.JoinRoom("tech") }()
		// let the join pass its subscription check and block on the bus
		time.Sleep(50 * time.Millisecond)
	})
	sess.Disconnect()

	select {
	case err := <-joined:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("JoinRoom did not return")
	}

	req.Equal("tech", bus.CurrentRoom())
	state := sess.State()
	req.Equal("tech", state.CurrentRoom)
	req.Equal(ids(bus.Messages("tech")), ids(state.Messages))

	req.NoError(sess.JoinRoom("general"))
	req.Equal("general", bus.CurrentRoom())
	req.Equal("general", sess.State().CurrentRoom)
}

func TestConnect_DuringDisconnectDispatchStaysInSync(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any()).AnyTimes()

	bus, sess := newTestSession(t, notifier)
	req.NoError(sess.Connect("Fay"))

	reconnected := make(chan error, 1)
	bus.On(core.EventDisconnect, func(core.Event) {
		go func() { reconnected <- sess.Connect("Gus") }()
		time.Sleep(50 * time.Millisecond)
	})
	sess.Disconnect()

	select {
	case err := <-reconnected:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("Connect did not return")
	}

	req.True(bus.Connected())
	state := sess.State()
	req.True(state.Connected)
	req.NotNil(state.CurrentUser)
	req.Equal("Gus", state.CurrentUser.Username)
	req.Equal(ids(bus.Messages("general")), ids(state.Messages))

	req.NoError(sess.SendMessage("still here"))
	msgs := sess.State().Messages
	req.Equal("still here", msgs[len(msgs)-1].Text)
}
