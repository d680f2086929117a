package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

// ErrNotConnected is returned by synchronous operations that run while the
// connection is still being (re)established in the background.
var ErrNotConnected = errors.New("broker: not connected")

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

type consumeState int

const (
	consumeIdle consumeState = iota
	consumeActive
	consumeStopped
)

// Channel is the subset of *amqp091.Channel the client uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	Close() error
}

type Connection interface {
	Channel() (Channel, error)
	Close() error
}

type DialFunc func(url string) (Connection, error)

type amqpConn struct {
	*amqp.Connection
}

func (c amqpConn) Channel() (Channel, error) {
	return c.Connection.Channel()
}

func amqpDial(url string) (Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Heartbeat: 60 * time.Second})
	if err != nil {
		return nil, err
	}
	return amqpConn{conn}, nil
}

// Client owns one connection+channel to RabbitMQ and keeps it alive.
// Queues asserted on the current connection generation are remembered so
// repeated EnsureQueue calls hit the broker only once; the set is cleared on
// reconnect, forcing re-assertion.
type Client struct {
	url  string
	dial DialFunc

	mu     sync.Mutex
	state  State
	conn   Connection
	ch     Channel
	queues map[string]struct{}

	consuming    consumeState
	consumeQueue string
	handler      func([]byte) error

	reconnecting   bool
	reconnectDelay time.Duration
	publishDelay   time.Duration
	publishRetries uint64

	done chan struct{}
	wg   sync.WaitGroup
}

func New(url string) *Client {
	return &Client{
		url:            url,
		dial:           amqpDial,
		queues:         make(map[string]struct{}),
		reconnectDelay: 5 * time.Second,
		publishDelay:   2 * time.Second,
		publishRetries: 3,
		done:           make(chan struct{}),
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ensureConnected is a no-op when connected. A failed attempt leaves the
// client Disconnected, schedules the background reconnect loop and returns
// the error to the caller immediately; it never blocks waiting for the loop.
func (c *Client) ensureConnected() error {
	if c.state == StateConnected {
		return nil
	}

	c.state = StateConnecting
	if err := c.connect(); err != nil {
		c.state = StateDisconnected
		c.scheduleReconnect()
		return err
	}
	return nil
}

func (c *Client) connect() error {
	conn, err := c.dial(c.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	c.conn = conn
	c.ch = ch
	c.state = StateConnected
	c.queues = make(map[string]struct{}) // new generation

	go c.watchClose(closed)

	// Re-attach the consumer lost with the previous channel.
	if c.consuming == consumeActive {
		if err := c.attachConsumer(); err != nil {
			log.Printf("[BROKER] consumer re-attach failed on %s: %v", c.consumeQueue, err)
		}
	}

	log.Printf("[BROKER] connected to %s", c.url)
	return nil
}

func (c *Client) watchClose(closed chan *amqp.Error) {
	select {
	case <-c.done:
		return
	case amqpErr := <-closed:
		select {
		case <-c.done:
			return
		default:
		}
		log.Printf("[BROKER] channel closed: %v — reconnecting in %s", amqpErr, c.reconnectDelay)

		c.mu.Lock()
		c.teardown()
		c.scheduleReconnect()
		c.mu.Unlock()
	}
}

// teardown drops the dead connection and invalidates the queue registry.
// Caller must hold c.mu.
func (c *Client) teardown() {
	c.conn = nil
	c.ch = nil
	c.state = StateDisconnected
	c.queues = make(map[string]struct{})
}

// scheduleReconnect starts the permanent reconnect loop: fixed delay, no
// ceiling. Caller must hold c.mu.
func (c *Client) scheduleReconnect() {
	if c.reconnecting {
		return
	}
	c.reconnecting = true

	go func() {
		for {
			select {
			case <-c.done:
				return
			case <-time.After(c.reconnectDelay):
			}

			c.mu.Lock()
			if c.state == StateConnected {
				c.reconnecting = false
				c.mu.Unlock()
				return
			}
			c.state = StateConnecting
			err := c.connect()
			if err != nil {
				c.state = StateDisconnected
				log.Printf("[BROKER] reconnect failed: %v", err)
				c.mu.Unlock()
				continue
			}
			c.reconnecting = false
			c.mu.Unlock()
			return
		}
	}()
}

// EnsureQueue asserts a durable, non-auto-delete queue. Idempotent per
// connection generation.
func (c *Client) EnsureQueue(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureQueue(name)
}

func (c *Client) ensureQueue(name string) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	if _, ok := c.queues[name]; ok {
		return nil
	}

	if _, err := c.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return err
	}
	c.queues[name] = struct{}{}
	return nil
}

// Publish sends v to the queue as a persistent, mandatory JSON message.
// Delivery is best-effort: a failed send is retried in the background up to
// publishRetries times at a fixed delay, then dropped with a log line. Only
// marshal errors are reported to the caller.
func (c *Client) Publish(ctx context.Context, queue string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := c.attempt(ctx, queue, data); err != nil {
		log.Printf("[BROKER] publish to %s failed: %v — retrying", queue, err)
		c.wg.Add(1)
		go c.retryPublish(queue, data)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, queue string, data []byte) error {
	c.mu.Lock()
	if err := c.ensureQueue(queue); err != nil {
		c.mu.Unlock()
		return err
	}
	ch := c.ch
	c.mu.Unlock()

	return ch.PublishWithContext(ctx, "", queue, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         data,
	})
}

func (c *Client) retryPublish(queue string, data []byte) {
	defer c.wg.Done()

	select {
	case <-c.done:
		return
	case <-time.After(c.publishDelay):
	}

	backoff := retry.WithMaxRetries(c.publishRetries-1, retry.NewConstant(c.publishDelay))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := c.attempt(ctx, queue, data); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		log.Printf("[BROKER] dropping message for %s after %d attempts: %v", queue, c.publishRetries+1, err)
	}
}

// Consume attaches the process-wide consumer to the queue. Idempotent: the
// consumer state machine moves Idle → Consuming once; later calls are no-ops.
// Handler failures nack without requeue, so a poisoned message is dropped
// rather than redelivered forever.
func (c *Client) Consume(queue string, handler func([]byte) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consuming != consumeIdle {
		return nil
	}

	if err := c.ensureQueue(queue); err != nil {
		return err
	}

	c.consumeQueue = queue
	c.handler = handler
	if err := c.attachConsumer(); err != nil {
		c.consumeQueue = ""
		c.handler = nil
		return err
	}
	c.consuming = consumeActive
	return nil
}

// attachConsumer registers the delivery loop on the current channel.
// Caller must hold c.mu.
func (c *Client) attachConsumer() error {
	deliveries, err := c.ch.Consume(c.consumeQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	handler := c.handler
	queue := c.consumeQueue
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for d := range deliveries {
			if err := handler(d.Body); err != nil {
				log.Printf("[BROKER] handler error on %s: %v — message dropped", queue, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

// Close shuts the channel and connection down and stops the consumer for
// good. Best-effort; safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
	}

	c.consuming = consumeStopped
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.teardown()
	log.Printf("[BROKER] connection closed")
}
