package queue

import (
	"encoding/json"
	"testing"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueCouponRedemptionReceipt(CouponRedemptionReceiptPayload{UsageID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.EnqueueSubscriptionWelcomeEmail(SubscriptionWelcomeEmailPayload{SubscriptionID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close should be noop: %v", err)
	}
}

func TestNewCouponRedemptionReceiptTask(t *testing.T) {
	task, err := NewCouponRedemptionReceiptTask(CouponRedemptionReceiptPayload{UsageID: 9, Locale: "en-US"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != constants.TaskCouponRedemptionReceipt {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload CouponRedemptionReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.UsageID != 9 || payload.Locale != "en-US" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency: %d", cfg.Concurrency)
	}
	if cfg.Queues[constants.QueueCritical] != 2 || cfg.Queues[constants.QueueDefault] != 1 {
		t.Fatalf("unexpected queues: %+v", cfg.Queues)
	}
}
