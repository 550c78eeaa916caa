package events

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Producer enqueues lifecycle events. Publishing is fire-and-forget from
// the caller's perspective; asynq retries delivery to the consumer.
type Producer struct {
	client *asynq.Client
	queue  string
}

// NewProducer connects a producer to the given Redis URL.
func NewProducer(redisURL, queue string) (*Producer, error) {
	opt, err := RedisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	if queue == "" {
		queue = "default"
	}
	return &Producer{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

// Close releases the underlying connection.
func (p *Producer) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

// PublishUserDeleted enqueues a user-deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, userID string) error {
	task, err := NewUserDeletedTask(UserDeletedPayload{UserID: userID})
	if err != nil {
		return err
	}
	_, err = p.client.EnqueueContext(ctx, task, asynq.Queue(p.queue), asynq.MaxRetry(5))
	return err
}

// RedisClientOpt translates a Redis URL into asynq connection options.
// Shared by the producer and the consumer-side worker setup.
func RedisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
