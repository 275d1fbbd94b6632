package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/provider"
	"github.com/prepwise-next/internal/queue"
	"github.com/prepwise-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCouponRedemptionReceipt, c.handleCouponRedemptionReceipt)
	mux.HandleFunc(queue.TaskSubscriptionWelcomeEmail, c.handleSubscriptionWelcomeEmail)
	mux.HandleFunc(queue.TaskCouponExpirySweep, c.handleCouponExpirySweep)
}

func (c *Consumer) handleCouponRedemptionReceipt(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_coupon_receipt_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CouponRedemptionReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_coupon_receipt_unmarshal_failed", "error", err)
		return err
	}
	if payload.UsageID == 0 {
		logger.Debugw("worker_coupon_receipt_skip_invalid_payload", "usage_id", payload.UsageID)
		return nil
	}
	if c.CouponReceiptService == nil {
		logger.Warnw("worker_coupon_receipt_skip_service_nil", "usage_id", payload.UsageID)
		return nil
	}
	if err := c.CouponReceiptService.Send(payload.UsageID, payload.Locale); err != nil {
		if isPermanentEmailError(err) {
			logger.Warnw("worker_coupon_receipt_dropped", "usage_id", payload.UsageID, "error", err)
			return nil
		}
		logger.Warnw("worker_coupon_receipt_send_failed", "usage_id", payload.UsageID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleSubscriptionWelcomeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_subscription_welcome_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SubscriptionWelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_subscription_welcome_unmarshal_failed", "error", err)
		return err
	}
	if payload.SubscriptionID == 0 {
		logger.Debugw("worker_subscription_welcome_skip_invalid_payload", "subscription_id", payload.SubscriptionID)
		return nil
	}
	if c.SubscriptionService == nil {
		logger.Warnw("worker_subscription_welcome_skip_service_nil", "subscription_id", payload.SubscriptionID)
		return nil
	}
	if err := c.SubscriptionService.SendWelcome(payload.SubscriptionID); err != nil {
		if isPermanentEmailError(err) {
			logger.Warnw("worker_subscription_welcome_dropped", "subscription_id", payload.SubscriptionID, "error", err)
			return nil
		}
		logger.Warnw("worker_subscription_welcome_send_failed", "subscription_id", payload.SubscriptionID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCouponExpirySweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_coupon_expiry_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CouponExpirySweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_coupon_expiry_sweep_unmarshal_failed", "error", err)
		return err
	}
	if c.CouponService == nil {
		logger.Warnw("worker_coupon_expiry_sweep_skip_service_nil", "triggered_by", payload.TriggeredBy)
		return nil
	}
	if _, err := c.CouponService.DeactivateExpired(); err != nil {
		logger.Warnw("worker_coupon_expiry_sweep_failed", "triggered_by", payload.TriggeredBy, "error", err)
		return err
	}
	return nil
}

// isPermanentEmailError 重试无意义的邮件错误
func isPermanentEmailError(err error) bool {
	return errors.Is(err, service.ErrEmailServiceDisabled) ||
		errors.Is(err, service.ErrEmailServiceNotConfigured) ||
		errors.Is(err, service.ErrEmailRecipientRejected) ||
		errors.Is(err, service.ErrInvalidEmail)
}
