package memorybus

import (
	"testing"

	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

func receive(t *testing.T, ch <-chan ports.Event) ports.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		return e
	default:
		t.Fatalf("no event delivered")
	}
	return ports.Event{}
}

func TestBus_DeliversToEverySubscriber(t *testing.T) {
	b := New()
	a, cancelA := b.Subscribe()
	c, cancelC := b.Subscribe()
	defer cancelA()
	defer cancelC()

	b.Publish("plan.completed", []byte(`{"id":"x"}`))

	for _, ch := range []<-chan ports.Event{a, c} {
		e := receive(t, ch)
		if e.Topic != "plan.completed" {
			t.Fatalf("topic: want %q, got %q", "plan.completed", e.Topic)
		}
	}
}

func TestBus_DropsWhenSubscriberIsSlow(t *testing.T) {
	b := New()
	_, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		b.Publish("plan.completed", nil)
	}
	if got := b.Dropped(); got != 3 {
		t.Fatalf("dropped: want %d, got %d", 3, got)
	}
}

func TestBus_CancelAndClose(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after cancel")
	}

	other, _ := b.Subscribe()
	b.Close()
	if _, ok := <-other; ok {
		t.Fatalf("channel should be closed after Close")
	}

	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("subscribe after Close should return a closed channel")
	}
	b.Publish("plan.failed", nil)
}
