// Package amqpsink transfère les événements plan.* du bus vers RabbitMQ.
package amqpsink

import (
	"context"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

const publishTimeout = 5 * time.Second

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// Publisher est le sous-ensemble de *amqp.Channel utilisé par le forwarder.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Forwarder struct {
	logger     zerolog.Logger
	pub        Publisher
	exchange   string
	routingKey string
	closers    []func() error
}

func NewForwarder(logger zerolog.Logger, pub Publisher, exchange, routingKey string) *Forwarder {
	return &Forwarder{
		logger:     logger.With().Str("component", "amqpsink").Logger(),
		pub:        pub,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// Dial ouvre la connexion et déclare l'exchange (type topic, durable).
func Dial(cfg Config, logger zerolog.Logger) (*Forwarder, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	f := NewForwarder(logger, ch, cfg.Exchange, cfg.RoutingKey)
	f.closers = []func() error{ch.Close, conn.Close}
	f.logger.Info().Str("exchange", cfg.Exchange).Str("routing_key", cfg.RoutingKey).Msg("connected to rabbitmq")
	return f, nil
}

// Run transfère les événements du bus jusqu'à l'annulation de ctx ou la
// fermeture du bus. Un échec de publication est journalisé, pas fatal.
func (f *Forwarder) Run(ctx context.Context, bus ports.EventBus) {
	events, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if !strings.HasPrefix(evt.Topic, "plan.") {
				continue
			}
			if err := f.Forward(ctx, evt); err != nil {
				f.logger.Warn().Err(err).Str("topic", evt.Topic).Msg("forward event")
			}
		}
	}
}

func (f *Forwarder) Forward(ctx context.Context, evt ports.Event) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := f.routingKey + "." + strings.TrimPrefix(evt.Topic, "plan.")
	err := f.pub.PublishWithContext(ctx, f.exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         evt.Topic,
		Body:         evt.Payload,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	f.logger.Debug().Str("routing_key", key).Msg("event forwarded")
	return nil
}

func (f *Forwarder) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
