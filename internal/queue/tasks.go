package queue

import (
	"encoding/json"

	"github.com/prepwise-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCouponRedemptionReceipt 优惠券核销回执邮件任务
	TaskCouponRedemptionReceipt = constants.TaskCouponRedemptionReceipt
	// TaskSubscriptionWelcomeEmail 订阅欢迎邮件任务
	TaskSubscriptionWelcomeEmail = constants.TaskSubscriptionWelcomeEmail
	// TaskCouponExpirySweep 过期优惠券停用任务
	TaskCouponExpirySweep = constants.TaskCouponExpirySweep
)

// CouponRedemptionReceiptPayload 核销回执任务载荷
type CouponRedemptionReceiptPayload struct {
	UsageID uint   `json:"usage_id"`
	Locale  string `json:"locale"`
}

// SubscriptionWelcomeEmailPayload 欢迎邮件任务载荷
type SubscriptionWelcomeEmailPayload struct {
	SubscriptionID uint `json:"subscription_id"`
}

// CouponExpirySweepPayload 过期停用任务载荷
type CouponExpirySweepPayload struct {
	TriggeredBy string `json:"triggered_by"`
}

// NewCouponRedemptionReceiptTask 创建核销回执任务
func NewCouponRedemptionReceiptTask(payload CouponRedemptionReceiptPayload) (*asynq.Task, error) {
	return newJSONTask(TaskCouponRedemptionReceipt, payload)
}

// NewSubscriptionWelcomeEmailTask 创建欢迎邮件任务
func NewSubscriptionWelcomeEmailTask(payload SubscriptionWelcomeEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskSubscriptionWelcomeEmail, payload)
}

// NewCouponExpirySweepTask 创建过期停用任务
func NewCouponExpirySweepTask(payload CouponExpirySweepPayload) (*asynq.Task, error) {
	return newJSONTask(TaskCouponExpirySweep, payload)
}

func newJSONTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}
