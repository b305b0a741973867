// Package notify publishes and receives lightweight change notices over Redis pub/sub
// so that replicas can refresh in-memory state after another replica writes.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/savetree-1/docflow/pkg/lifecycle"
)

// Handler receives the payload of each notice on a subscribed topic.
type Handler func(payload string)

// System publishes and subscribes to topic notices.
type System interface {
	// Start registers a startup ping and a shutdown close with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Publish sends payload to every subscriber of topic.
	Publish(ctx context.Context, topic, payload string) error
	// Subscribe delivers notices on topic to fn until ctx is cancelled.
	// It returns once the subscription is confirmed by the server.
	Subscribe(ctx context.Context, topic string, fn Handler) error
}

type redisNotifier struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// New creates a notification system from cfg. When cfg has no URL the returned
// System discards publishes and never delivers.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if !cfg.Enabled() {
		return disabled{}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return NewWithClient(redis.NewClient(opts), cfg.Prefix, logger), nil
}

// NewWithClient creates a notification system from an existing Redis client.
func NewWithClient(client *redis.Client, prefix string, logger *slog.Logger) System {
	return &redisNotifier{
		client: client,
		prefix: prefix,
		logger: logger.With("system", "notify"),
	}
}

func (n *redisNotifier) channel(topic string) string {
	return n.prefix + ":" + topic
}

func (n *redisNotifier) Start(lc *lifecycle.Coordinator) error {
	n.logger.Info("starting notification system")

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), 5*time.Second)
		defer cancel()

		if err := n.client.Ping(ctx).Err(); err != nil {
			n.logger.Error("redis ping failed", "error", err)
			return
		}

		n.logger.Info("redis connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := n.client.Close(); err != nil {
			n.logger.Error("redis close failed", "error", err)
			return
		}
		n.logger.Info("redis connection closed")
	})

	return nil
}

func (n *redisNotifier) Publish(ctx context.Context, topic, payload string) error {
	if err := n.client.Publish(ctx, n.channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (n *redisNotifier) Subscribe(ctx context.Context, topic string, fn Handler) error {
	sub := n.client.Subscribe(ctx, n.channel(topic))

	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	go func() {
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(msg.Payload)
			}
		}
	}()

	n.logger.Info("subscribed", "topic", topic)
	return nil
}

type disabled struct{}

func (disabled) Start(*lifecycle.Coordinator) error               { return nil }
func (disabled) Publish(context.Context, string, string) error    { return nil }
func (disabled) Subscribe(context.Context, string, Handler) error { return nil }
