package scheduler

import (
	"context"
	"time"

	"vipkeyserver/logger"
	"vipkeyserver/notify"
	"vipkeyserver/services"
)

// Scheduler 만료 키 정리 작업을 주기적으로 실행
type Scheduler struct {
	lifecycle  services.LifecycleService
	dispatcher *notify.Dispatcher
	interval   time.Duration
	stop       chan struct{}
}

// NewScheduler 스케줄러 생성. interval이 0 이하면 1시간으로 동작한다.
func NewScheduler(lifecycle services.LifecycleService, dispatcher *notify.Dispatcher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		lifecycle:  lifecycle,
		dispatcher: dispatcher,
		interval:   interval,
		stop:       make(chan struct{}),
	}
}

// Start 스케줄러 시작. 시작 즉시 한 번 실행하고 이후 주기적으로 실행한다.
func (s *Scheduler) Start() {
	logger.Info("Scheduler started (interval: %s)", s.interval)

	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.Info("Scheduler tick: Running SweepExpiredKeys")
				s.sweep()
			case <-s.stop:
				logger.Info("Scheduler stopped")
				return
			}
		}
	}()
}

// Stop 스케줄러 정지
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events, err := s.lifecycle.SweepExpiredKeys(ctx)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Error("Failed to sweep expired keys")
		return
	}

	if len(events) > 0 {
		logger.WithFields(map[string]interface{}{
			"events": len(events),
		}).Info("Expired keys swept")
		s.dispatcher.Dispatch(ctx, events)
	}
}
