package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestEmitter_DropOnFull(t *testing.T) {
	e := NewEmitter(10)

	accepted := 0
	for i := 0; i < 25; i++ {
		if e.TrySend(Event{Latency: time.Millisecond}) {
			accepted++
		}
	}

	if accepted != 10 {
		t.Errorf("accepted = %d, want 10", accepted)
	}
	if e.Dropped() != 15 {
		t.Errorf("Dropped() = %d, want 15", e.Dropped())
	}
}

func TestEmitter_TrySendNeverBlocks(t *testing.T) {
	e := NewEmitter(1)

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for g := 0; g < 32; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 1000; i++ {
					e.TrySend(Event{})
				}
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("TrySend blocked with nobody reading")
	}

	if got := e.Dropped(); got != 32*1000-1 {
		t.Errorf("Dropped() = %d, want %d", got, 32*1000-1)
	}
}

func TestEmitter_Close(t *testing.T) {
	e := NewEmitter(4)
	e.TrySend(Event{Path: "/a"})
	e.TrySend(Event{Path: "/b"})
	e.Close()
	e.Close() // idempotent

	if e.TrySend(Event{}) {
		t.Error("TrySend after Close should report false")
	}

	var got []string
	for ev := range e.Events() {
		got = append(got, ev.Path)
	}
	if len(got) != 2 || got[0] != "/a" || got[1] != "/b" {
		t.Errorf("buffered events after Close = %v, want [/a /b]", got)
	}
}

func TestNewEmitter_DefaultCapacity(t *testing.T) {
	e := NewEmitter(0)
	if cap(e.ch) != DefaultEventBuffer {
		t.Errorf("capacity = %d, want %d", cap(e.ch), DefaultEventBuffer)
	}
}

func BenchmarkEmitter_TrySend_Parallel(b *testing.B) {
	e := NewEmitter(DefaultEventBuffer)
	go func() {
		for range e.Events() {
		}
	}()
	defer e.Close()

	ev := Event{CompletedAt: time.Now(), Latency: time.Millisecond}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			e.TrySend(ev)
		}
	})
}
