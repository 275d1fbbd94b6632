package app

import (
	"context"
	"errors"
	"time"

	"github.com/prepwise-next/internal/logger"
)

// expirer 过期优惠券停用能力
type expirer interface {
	DeactivateExpired() (int64, error)
}

// ExpirySweepService 进程内优惠券过期停用服务
type ExpirySweepService struct {
	expirer  expirer
	interval time.Duration
	stopCh   chan struct{}
}

// NewExpirySweepService 创建进程内过期停用服务
func NewExpirySweepService(e expirer, interval time.Duration) *ExpirySweepService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ExpirySweepService{
		expirer:  e,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Name 服务名称
func (s *ExpirySweepService) Name() string {
	return "coupon_expiry_sweep"
}

// Start 启动服务
func (s *ExpirySweepService) Start(ctx context.Context) error {
	if s == nil || s.expirer == nil {
		return errors.New("expiry sweep not initialized")
	}
	s.sweep()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Stop 停止服务
func (s *ExpirySweepService) Stop(ctx context.Context) error {
	if s == nil || s.stopCh == nil {
		return nil
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	return nil
}

func (s *ExpirySweepService) sweep() {
	affected, err := s.expirer.DeactivateExpired()
	if err != nil {
		logger.Warnw("app_coupon_expiry_sweep_failed", "error", err)
		return
	}
	if affected > 0 {
		logger.Infow("app_coupon_expiry_sweep_done", "deactivated", affected)
	}
}
