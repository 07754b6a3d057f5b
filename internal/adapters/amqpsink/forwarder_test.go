package amqpsink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/streamplan/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func TestForward_UsesTopicSuffixAsRoutingKey(t *testing.T) {
	pub := &fakePublisher{}
	f := NewForwarder(zerolog.Nop(), pub, "streamplan", "plans")

	err := f.Forward(context.Background(), ports.Event{Topic: "plan.infeasible", Payload: []byte(`{"id":"a"}`)})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("sent: want %d, got %d", 1, len(pub.sent))
	}
	got := pub.sent[0]
	if got.exchange != "streamplan" || got.key != "plans.infeasible" {
		t.Fatalf("destination: got %s/%s", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp.Persistent || got.msg.ContentType != "application/json" {
		t.Fatalf("publishing: got %+v", got.msg)
	}
}

func TestForward_WrapsPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	f := NewForwarder(zerolog.Nop(), &fakePublisher{err: boom}, "x", "y")

	err := f.Forward(context.Background(), ports.Event{Topic: "plan.completed"})
	if !errors.Is(err, boom) {
		t.Fatalf("err: want %v, got %v", boom, err)
	}
}

func TestRun_ForwardsPlanEventsOnly(t *testing.T) {
	bus := memorybus.New()
	pub := &fakePublisher{}
	f := NewForwarder(zerolog.Nop(), pub, "streamplan", "plans")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx, bus)
		close(done)
	}()

	// Laisse Run s'abonner avant de publier.
	deadline := time.Now().Add(time.Second)
	for pub.count() == 0 && time.Now().Before(deadline) {
		bus.Publish("catalog.reloaded", nil)
		bus.Publish("plan.completed", []byte(`{}`))
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if pub.count() == 0 {
		t.Fatalf("no event forwarded")
	}
	for _, s := range pub.sent {
		if s.key != "plans.completed" {
			t.Fatalf("unexpected routing key %q", s.key)
		}
	}
}
