package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Queue names shared with the ordering system. They are part of the
// cross-service contract and must not change.
const (
	CheckAvailabilityQueue    = "orders_to_products_check_availability"
	AvailabilityResponseQueue = "products_to_orders_availability_response"
)

// Handler processes one message body. The message is acknowledged after the
// handler returns, whether or not it reports an error: delivery is
// at-least-once from the broker, with no redelivery on handler failure.
type Handler func(ctx context.Context, body []byte) error

// Client owns the connection to the message broker. Readers and writers
// reconnect internally on transport failure; callers never deal with
// connection state.
type Client struct {
	brokers []string
	groupID string
	logger  *zap.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers []*kafka.Reader
}

// NewClient creates a broker client for the given bootstrap addresses.
// groupID identifies the consumer group used by subscriptions.
func NewClient(brokers []string, groupID string, logger *zap.Logger) *Client {
	return &Client{
		brokers: brokers,
		groupID: groupID,
		logger:  logger,
		writers: make(map[string]*kafka.Writer),
	}
}

// EnsureQueues declares the given durable queues, idempotently. Existing
// queues are left untouched.
func (c *Client) EnsureQueues(ctx context.Context, names ...string) error {
	client := &kafka.Client{Addr: kafka.TCP(c.brokers...)}

	topics := make([]kafka.TopicConfig, 0, len(names))
	for _, name := range names {
		topics = append(topics, kafka.TopicConfig{
			Topic:             name,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	resp, err := client.CreateTopics(ctx, &kafka.CreateTopicsRequest{Topics: topics})
	if err != nil {
		return fmt.Errorf("failed to declare queues: %w", err)
	}

	for name, topicErr := range resp.Errors {
		if topicErr != nil && !errors.Is(topicErr, kafka.TopicAlreadyExists) {
			return fmt.Errorf("failed to declare queue %s: %w", name, topicErr)
		}
	}

	c.logger.Info("Durable queues declared", zap.Strings("queues", names))
	return nil
}

// Publish serializes payload to JSON and publishes it to the queue. It waits
// for the broker to confirm the write before returning, so a nil error means
// the message was accepted.
func (c *Client) Publish(ctx context.Context, queue string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for queue %s: %w", queue, err)
	}

	err = c.writer(queue).WriteMessages(ctx, kafka.Message{
		Key:   []byte(uuid.New().String()),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}

	c.logger.Debug("Message published",
		zap.String("queue", queue),
		zap.Int("bytes", len(body)),
	)
	return nil
}

// Subscribe consumes the queue one message at a time, invoking handler for
// each. The offset is committed after the handler returns regardless of its
// error: a failed message is logged and dropped, never redelivered. Blocks
// until ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, queue string, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.brokers,
		GroupID:  c.groupID,
		Topic:    queue,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	c.mu.Lock()
	c.readers = append(c.readers, reader)
	c.mu.Unlock()

	c.logger.Info("Subscribed to queue",
		zap.String("queue", queue),
		zap.String("group_id", c.groupID),
	)

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Subscription stopped", zap.String("queue", queue))
				return nil
			}
			c.logger.Error("Failed to fetch message",
				zap.Error(err),
				zap.String("queue", queue),
			)
			continue
		}

		if err := handler(ctx, m.Value); err != nil {
			c.logger.Error("Message handler failed, dropping message",
				zap.Error(err),
				zap.String("queue", queue),
				zap.Int64("offset", m.Offset),
			)
		}

		if err := reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to commit message offset",
				zap.Error(err),
				zap.String("queue", queue),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// writer returns the confirmed-delivery writer for a queue, creating it on
// first use.
func (c *Client) writer(queue string) *kafka.Writer {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.writers[queue]
	if !ok {
		w = &kafka.Writer{
			Addr:         kafka.TCP(c.brokers...),
			Topic:        queue,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		}
		c.writers[queue] = w
	}
	return w
}

// Close shuts down all writers and readers
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for queue, w := range c.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for %s: %w", queue, err)
		}
	}
	for _, r := range c.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close reader: %w", err)
		}
	}
	return firstErr
}
