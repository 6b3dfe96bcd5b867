package kds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yeremiapane/resto-order-core/utils"
)

const (
	BridgeExchange = "kds_events_fanout"
	publishTimeout = 5 * time.Second
)

// envelope tags an event with the instance that produced it so the producer skips its own copy.
type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

func encodeEnvelope(origin string, e Event) ([]byte, error) {
	return json.Marshal(envelope{Origin: origin, Event: e})
}

func decodeEnvelope(body []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, err
	}
	if env.Event.TenantID == 0 || (env.Event.Kind != EventNewOrder && env.Event.Kind != EventOrderUpdate) {
		return envelope{}, fmt.Errorf("malformed kds event")
	}
	return env, nil
}

// Bridge shares hub events between API instances through a RabbitMQ fanout exchange.
// It inherits the hub's guarantees: best effort, no persistence, no replay.
type Bridge struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	hub     *Hub
	origin  string
}

func DialBridge(url string, hub *Hub) (*Bridge, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	b := &Bridge{conn: conn, channel: ch, hub: hub, origin: uuid.NewString()}
	if err := b.setupTopology(); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bridge) setupTopology() error {
	if err := b.channel.ExchangeDeclare(
		BridgeExchange, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := b.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := b.channel.QueueBind(q.Name, "", BridgeExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := b.channel.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}
	go b.consume(deliveries)
	return nil
}

func (b *Bridge) consume(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		env, err := decodeEnvelope(d.Body)
		if err != nil {
			utils.ErrorLogger.Printf("kds bridge: dropping message: %v", err)
			continue
		}
		if env.Origin == b.origin {
			continue
		}
		b.hub.Deliver(env.Event)
	}
	utils.InfoLogger.Println("kds bridge: delivery channel closed")
}

// Forward implements Relay. Failures are logged and swallowed.
func (b *Bridge) Forward(e Event) {
	body, err := encodeEnvelope(b.origin, e)
	if err != nil {
		utils.ErrorLogger.Printf("kds bridge: marshal event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = b.channel.PublishWithContext(ctx, BridgeExchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		utils.ErrorLogger.Printf("kds bridge: publish %s for tenant %d: %v", e.Kind, e.TenantID, err)
	}
}

func (b *Bridge) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
