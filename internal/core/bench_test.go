package core

import (
	"testing"

	"github.com/benbjohnson/clock"
)

func benchmarkSendDispatch(b *testing.B, listeners int) {
	bus := NewBus(Options{Clock: clock.NewMock()})
	defer bus.Close()

	if _, err := bus.Connect("bench"); err != nil {
		b.Fatalf("connect: %v", err)
	}

	delivered := 0
	for range listeners {
		bus.On(EventMessage, func(Event) { delivered++ })
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := bus.SendMessage("payload"); err != nil {
			b.Fatalf("send: %v", err)
		}
	}

	if delivered != b.N*listeners {
		b.Fatalf("delivered %d, want %d", delivered, b.N*listeners)
	}
}

func BenchmarkSendDispatch_1(b *testing.B)   { benchmarkSendDispatch(b, 1) }
func BenchmarkSendDispatch_10(b *testing.B)  { benchmarkSendDispatch(b, 10) }
func BenchmarkSendDispatch_100(b *testing.B) { benchmarkSendDispatch(b, 100) }
