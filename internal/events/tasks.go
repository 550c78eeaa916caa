// Package events carries asynchronous user-lifecycle events between
// services over Redis. Delivery is at-least-once; consumers must be
// idempotent because the same event can be redelivered.
package events

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskUserDeleted is published by the user service when an account is
// removed. The product service consumes it to cascade-delete the user's
// products and their media.
const TaskUserDeleted = "user.deleted"

// UserDeletedPayload identifies the removed user.
type UserDeletedPayload struct {
	UserID string `json:"userId"`
}

// NewUserDeletedTask builds the asynq task for a user-deleted event.
func NewUserDeletedTask(payload UserDeletedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUserDeleted, data), nil
}

// ParseUserDeletedPayload decodes a user-deleted task payload.
func ParseUserDeletedPayload(task *asynq.Task) (UserDeletedPayload, error) {
	var payload UserDeletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return UserDeletedPayload{}, err
	}
	return payload, nil
}
