package product

import (
	"context"

	"marketbay_backend/internal/events"
	"marketbay_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Consumer reacts to user-lifecycle events. Handlers are idempotent:
// redelivered events find the cascade already applied and do nothing.
type Consumer struct {
	module *Module
	log    *logger.Logger
}

// NewConsumer creates the product-side event consumer.
func NewConsumer(module *Module, log *logger.Logger) *Consumer {
	return &Consumer{module: module, log: log}
}

// Register mounts the consumer's handlers on an asynq mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(events.TaskUserDeleted, c.handleUserDeleted)
}

func (c *Consumer) handleUserDeleted(ctx context.Context, task *asynq.Task) error {
	payload, err := events.ParseUserDeletedPayload(task)
	if err != nil {
		c.log.Error("malformed user-deleted payload", "error", err)
		// Retrying cannot fix a malformed payload.
		return nil
	}

	c.log.Info("user-deleted event received", "userId", payload.UserID)
	return c.module.service.RemoveByOwner(ctx, payload.UserID)
}
