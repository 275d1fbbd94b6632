package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubService struct {
	name     string
	startErr error
	stopErr  error
	stopped  atomic.Bool
	order    *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	if s.order != nil {
		s.order.add(s.name)
	}
	return s.stopErr
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := &stubService{name: "failing", startErr: boom}
	healthy := &stubService{name: "healthy"}
	runner := NewRunner(failing, healthy)

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err.Error() != "failing: boom" {
		t.Fatalf("error should name the failing service, got %q", err.Error())
	}
	if !failing.stopped.Load() || !healthy.stopped.Load() {
		t.Fatalf("expected every service to be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(&stubService{name: "healthy"})
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}

func TestRunnerStopsInReverseOrderAndJoinsStopErrors(t *testing.T) {
	order := &stopOrder{}
	stopErr := errors.New("flush failed")
	http := &stubService{name: "http", order: order}
	worker := &stubService{name: "worker", order: order, stopErr: stopErr}
	sweep := &stubService{name: "coupon_expiry_sweep", order: order}
	runner := NewRunner(http, nil, worker, sweep)

	if names := runner.Names(); len(names) != 3 || names[1] != "worker" {
		t.Fatalf("nil services should be dropped, got %v", names)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := runner.Run(ctx, time.Second, nil)
	if !errors.Is(err, stopErr) {
		t.Fatalf("stop error should be reported, got %v", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("shutdown signal should not be reported as failure, got %v", err)
	}
	want := []string{"coupon_expiry_sweep", "worker", "http"}
	if len(order.names) != len(want) {
		t.Fatalf("stop order want %v got %v", want, order.names)
	}
	for i := range want {
		if order.names[i] != want[i] {
			t.Fatalf("stop order want %v got %v", want, order.names)
		}
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); !errors.Is(err, ErrNoServices) {
		t.Fatalf("expected no services error, got %v", err)
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil runner")
	}
}
