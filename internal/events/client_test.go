package events

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

func TestPublishUserDeletedEnqueues(t *testing.T) {
	redis := miniredis.RunT(t)

	producer, err := NewProducer("redis://"+redis.Addr(), "default")
	if err != nil {
		t.Fatalf("producer setup failed: %v", err)
	}
	defer producer.Close()

	if err := producer.PublishUserDeleted(context.Background(), "u1"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redis.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("listing pending tasks failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
	if pending[0].Type != TaskUserDeleted {
		t.Fatalf("expected task type %q, got %q", TaskUserDeleted, pending[0].Type)
	}

	payload, err := ParseUserDeletedPayload(asynq.NewTask(pending[0].Type, pending[0].Payload))
	if err != nil {
		t.Fatalf("payload did not parse: %v", err)
	}
	if payload.UserID != "u1" {
		t.Fatalf("expected userId u1, got %q", payload.UserID)
	}
}

func TestRedisClientOptRejectsGarbage(t *testing.T) {
	if _, err := RedisClientOpt("not-a-url"); err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}
