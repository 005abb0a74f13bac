package streams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookline/bookline_backend/config"
	redispkg "github.com/bookline/bookline_backend/pkg/redis"
)

const (
	// consumeBlock is how long a single XReadGroup call blocks waiting for
	// messages. The consumer's Redis connection read timeout must exceed it.
	consumeBlock = 5 * time.Second
)

// Consumer reads events from the events stream via a consumer group.
// It owns a dedicated Redis connection sized for blocking reads.
type Consumer struct {
	rdb          *redis.Client
	groupName    string
	consumerName string
}

// NewConsumer creates a consumer-group consumer for the events stream.
// The group is created if it does not exist yet.
func NewConsumer(cfg config.RedisConfig, consumerName string) (*Consumer, error) {
	rdb, err := redispkg.NewStreamsRedisFromCentral(cfg, 2*consumeBlock)
	if err != nil {
		return nil, fmt.Errorf("streams redis client: %w", err)
	}

	// Start ID "0" means read from beginning if the group is new.
	err = rdb.XGroupCreateMkStream(context.Background(), StreamEvents, GroupWorkers, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		rdb.Close()
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	// Ignore BUSYGROUP error - group already exists

	return &Consumer{
		rdb:          rdb,
		groupName:    GroupWorkers,
		consumerName: consumerName,
	}, nil
}

// Consume runs a blocking loop delivering events to handler until ctx is done.
// Handler failures leave the message in the pending entries list for retry.
func (c *Consumer) Consume(ctx context.Context, handler func(Event) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupName,
			Consumer: c.consumerName,
			Streams:  []string{StreamEvents, ">"},
			Count:    10,
			Block:    consumeBlock,
		}).Result()

		if err == redis.Nil {
			// No messages available, continue loop
			continue
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Blocking reads return a timeout when no messages arrive
			// within the block duration — this is normal, not an error.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			slog.Error("failed to read from events stream", "error", err)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				payloadStr, ok := message.Values["payload"].(string)
				if !ok {
					slog.Error("invalid stream message payload", "message_id", message.ID)
					// Poison message: ACK so it doesn't clog the PEL
					c.ack(ctx, message.ID)
					continue
				}

				var ev Event
				if err := json.Unmarshal([]byte(payloadStr), &ev); err != nil {
					slog.Error("failed to unmarshal event", "error", err, "message_id", message.ID)
					c.ack(ctx, message.ID)
					continue
				}

				if err := handler(ev); err != nil {
					slog.Error("event handler failed", "error", err, "kind", ev.Kind, "message_id", message.ID)
					// Message stays in PEL for retry, don't ACK
					continue
				}

				c.ack(ctx, message.ID)
			}
		}
	}
}

func (c *Consumer) ack(ctx context.Context, messageID string) {
	if err := c.rdb.XAck(ctx, StreamEvents, c.groupName, messageID).Err(); err != nil {
		slog.Error("failed to ACK stream message", "error", err, "message_id", messageID)
	}
}

// Close closes the consumer's dedicated Redis connection.
func (c *Consumer) Close() error {
	return c.rdb.Close()
}
