package worker

import (
	"context"
	"errors"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultExpirySweepInterval = 5 * time.Minute

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = newAsynqLogger()
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.QueueClient != nil {
		go s.runExpirySweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runExpirySweepLoop 定时投递过期停用任务，多实例下由唯一任务去重
func (s *Service) runExpirySweepLoop(ctx context.Context) {
	interval := ExpirySweepInterval(s.consumer.Config)
	enqueue := func() {
		err := s.consumer.QueueClient.EnqueueCouponExpirySweep(queue.CouponExpirySweepPayload{TriggeredBy: "ticker"}, interval)
		if err != nil {
			logger.Warnw("worker_coupon_expiry_sweep_enqueue_failed", "error", err)
		}
	}
	enqueue()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

// ExpirySweepInterval 过期停用扫描间隔
func ExpirySweepInterval(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Coupon.ExpirySweepSeconds <= 0 {
		return defaultExpirySweepInterval
	}
	return time.Duration(cfg.Coupon.ExpirySweepSeconds) * time.Second
}
