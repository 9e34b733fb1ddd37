package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const issueRoutingPattern = "issue.#"

// AMQPPublisher hands events to a RabbitMQ topic exchange.
type AMQPPublisher struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string

	mu       sync.Mutex
	inflight sync.WaitGroup
}

// NewAMQPPublisher connects and declares the exchange (idempotent).
func NewAMQPPublisher(url, exchangeName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareExchange(channel, exchangeName); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	log.Info().
		Str("exchange", exchangeName).
		Msg("RabbitMQ notification publisher initialized")

	return &AMQPPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}, nil
}

func declareExchange(channel *amqp.Channel, name string) error {
	err := channel.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// Enqueue publishes in the background; publish failures are logged only.
func (p *AMQPPublisher) Enqueue(event Event) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		if err := p.publish(context.Background(), event); err != nil {
			log.Error().
				Err(&NotificationError{IssueID: event.IssueID, Kind: event.Kind, Err: err}).
				Msg("Error publishing notification event")
		}
	}()
}

func (p *AMQPPublisher) publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,     // exchange
		string(event.Kind), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			MessageId:    fmt.Sprintf("%s-%d", event.IssueID, time.Now().UnixNano()),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().
		Str("routing_key", string(event.Kind)).
		Str("issue_id", event.IssueID).
		Msg("Notification event published")
	return nil
}

// Close waits for in-flight publishes and closes the connection.
func (p *AMQPPublisher) Close() error {
	p.inflight.Wait()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	log.Info().Msg("RabbitMQ notification publisher closed")
	return nil
}

// AMQPConsumer drains the notification queue and sends mail.
// Every delivery is acked, including failed ones: notifications are never retried.
type AMQPConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	mailer    Mailer
}

func NewAMQPConsumer(url, exchangeName, queueName string, mailer Mailer) (*AMQPConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	cleanup := func() {
		channel.Close()
		conn.Close()
	}

	if err := declareExchange(channel, exchangeName); err != nil {
		cleanup()
		return nil, err
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, issueRoutingPattern, exchangeName, false, nil); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if err := channel.Qos(1, 0, false); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	log.Info().
		Str("exchange", exchangeName).
		Str("queue", queue.Name).
		Msg("RabbitMQ notification consumer initialized")

	return &AMQPConsumer{
		conn:      conn,
		channel:   channel,
		queueName: queue.Name,
		mailer:    mailer,
	}, nil
}

// Consume blocks until ctx is cancelled or the delivery channel closes.
func (c *AMQPConsumer) Consume(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.handle(ctx, msg.Body)
			if err := msg.Ack(false); err != nil {
				log.Error().Err(err).Msg("Failed to ack notification message")
			}
		}
	}
}

func (c *AMQPConsumer) handle(ctx context.Context, body []byte) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error().Err(err).Msg("Discarding malformed notification event")
		return
	}
	if err := deliver(ctx, c.mailer, event); err != nil {
		log.Error().Err(err).Msg("Error sending notification")
	}
}

func (c *AMQPConsumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close channel")
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
