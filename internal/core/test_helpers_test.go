package core

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func fixedSchedule(first, rearm time.Duration) *Schedule {
	return &Schedule{FirstMin: first, FirstMax: first, RearmMin: rearm, RearmMax: rearm}
}

func newTestBus(t *testing.T, clk clock.Clock) *Bus {
	t.Helper()

	bus := NewBus(Options{
		Clock:    clk,
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Schedule: fixedSchedule(5*time.Second, 10*time.Second),
	})
	t.Cleanup(bus.Close)
	return bus
}

// record subscribes to every event kind and forwards events to the returned channel.
func record(bus *Bus) <-chan *Event {
	ch := make(chan *Event, 64)
	for _, kind := range []EventKind{EventConnect, EventDisconnect, EventMessage, EventRoomChange} {
		bus.On(kind, func(ev Event) {
			select {
			case ch <- &ev:
			default:
			}
		})
	}
	return ch
}

// settle waits until any in-flight scheduler fire has finished.
func settle(bus *Bus) {
	bus.emitMu.Lock()
	bus.emitMu.Unlock()
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event %v: %+v", kind, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func messageIDs(msgs []Message) []string {
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids
}
