package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultMaxLen caps each stream, trimmed approximately on publish.
const DefaultMaxLen = 10000

// StreamsEventBus implements EventBus using Redis Streams.
//
// With an empty consumer group every subscriber reads the whole stream from
// the moment it subscribes (broadcast). With a consumer group set, messages
// are shared among the group's consumers and acknowledged after handling.
type StreamsEventBus struct {
	client        *redis.Client
	logger        *zap.Logger
	prefix        string
	consumerGroup string
	consumerName  string
	maxLen        int64
}

// NewStreamsEventBus creates a new Redis Streams event bus
func NewStreamsEventBus(client *redis.Client, prefix, consumerGroup, consumerName string, logger *zap.Logger) *StreamsEventBus {
	if prefix == "" {
		prefix = "tripplanner:events"
	}
	return &StreamsEventBus{
		client:        client,
		logger:        logger,
		prefix:        prefix,
		consumerGroup: consumerGroup,
		consumerName:  consumerName,
		maxLen:        DefaultMaxLen,
	}
}

// Publish appends an event to the topic's stream
func (e *StreamsEventBus) Publish(ctx context.Context, topic string, event ports.Event) error {
	streamKey := e.streamKey(topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: e.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type": string(event.Type),
			"data": string(data),
		},
	}

	if _, err := e.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("stream", streamKey))

	return nil
}

// Subscribe reads events on topic until ctx is cancelled
func (e *StreamsEventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	streamKey := e.streamKey(topic)

	if e.consumerGroup != "" {
		err := e.client.XGroupCreateMkStream(ctx, streamKey, e.consumerGroup, "$").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to create consumer group: %w", err)
		}
		go e.readGroup(ctx, streamKey, handler)
	} else {
		go e.readBroadcast(ctx, streamKey, handler)
	}

	e.logger.Info("subscribed to event stream",
		zap.String("stream", streamKey),
		zap.String("consumer_group", e.consumerGroup),
		zap.String("consumer", e.consumerName))

	return nil
}

// readBroadcast follows the stream from its current end
func (e *StreamsEventBus) readBroadcast(ctx context.Context, streamKey string, handler ports.EventHandler) {
	lastID := "$"
	for ctx.Err() == nil {
		streams, err := e.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{streamKey, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if !e.readOK(ctx, streamKey, err) {
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				e.processMessage(ctx, streamKey, message, handler)
			}
		}
	}
}

// readGroup consumes the stream as part of the consumer group
func (e *StreamsEventBus) readGroup(ctx context.Context, streamKey string, handler ports.EventHandler) {
	for ctx.Err() == nil {
		streams, err := e.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    e.consumerGroup,
			Consumer: e.consumerName,
			Streams:  []string{streamKey, ">"},
			Count:    10,
			Block:    time.Second,
		}).Result()
		if !e.readOK(ctx, streamKey, err) {
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				if e.processMessage(ctx, streamKey, message, handler) {
					e.ack(ctx, streamKey, message.ID)
				}
			}
		}
	}
}

// readOK reports whether a read returned messages, backing off on errors
func (e *StreamsEventBus) readOK(ctx context.Context, streamKey string, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, redis.Nil) || ctx.Err() != nil {
		return false
	}

	e.logger.Error("failed to read from stream",
		zap.String("stream", streamKey),
		zap.Error(err))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
	return false
}

// processMessage decodes a message and hands it to handler
func (e *StreamsEventBus) processMessage(ctx context.Context, streamKey string, message redis.XMessage, handler ports.EventHandler) bool {
	event, err := decodeMessage(message)
	if err != nil {
		e.logger.Error("invalid stream message",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
		return false
	}

	if err := handler(ctx, event); err != nil {
		e.logger.Error("handler error",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
		return false
	}
	return true
}

func (e *StreamsEventBus) ack(ctx context.Context, streamKey, messageID string) {
	if err := e.client.XAck(ctx, streamKey, e.consumerGroup, messageID).Err(); err != nil {
		e.logger.Error("failed to acknowledge message",
			zap.String("stream", streamKey),
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

// Close is a no-op; the Redis client is closed by the caller
func (e *StreamsEventBus) Close() error {
	return nil
}

// streamKey returns the Redis stream key for a topic
func (e *StreamsEventBus) streamKey(topic string) string {
	return fmt.Sprintf("%s:%s", e.prefix, topic)
}

func decodeMessage(message redis.XMessage) (ports.Event, error) {
	var event ports.Event

	data, ok := message.Values["data"].(string)
	if !ok {
		return event, fmt.Errorf("missing data field")
	}
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
