package schedule

// 年假余额夜间调度：每天重算当年所有在职员工的余额，多实例间用 Redis 锁保证只跑一次

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"HRCore/config"
	"HRCore/internal/cache"
	"HRCore/internal/queue"
	"HRCore/internal/service"
	"HRCore/pkg/logger"
)

const balanceJob = "balance_recompute"

var (
	balanceSchedulerOnce sync.Once
	balanceSchedulerInst *BalanceScheduler
)

// RecomputeRunner 由 service.BalanceService 实现
type RecomputeRunner interface {
	Recompute(ctx context.Context, opts service.RecomputeOptions) (*service.RecomputeResult, error)
}

// BalanceScheduler 余额重算调度器
type BalanceScheduler struct {
	logger  *zap.Logger
	locker  cache.Locker
	runner  RecomputeRunner
	lockTTL time.Duration
	now     func() time.Time

	running bool
	mu      sync.Mutex
	lastRun time.Time
}

// GetBalanceScheduler 获取调度器单例
func GetBalanceScheduler() *BalanceScheduler {
	balanceSchedulerOnce.Do(func() {
		balanceSchedulerInst = NewBalanceScheduler(cache.NewRedisLocker(), service.Balance())
	})
	return balanceSchedulerInst
}

func NewBalanceScheduler(locker cache.Locker, runner RecomputeRunner) *BalanceScheduler {
	return &BalanceScheduler{
		logger:  logger.Named("balance_scheduler"),
		locker:  locker,
		runner:  runner,
		lockTTL: 30 * time.Minute,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RunDaily 执行一次当日的余额重算。
// 本进程已在运行、或其它实例已取得当日锁时直接返回 false
func (s *BalanceScheduler) RunDaily(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("Balance recompute job already running, skipping")
		return false, nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	now := s.now()
	runKey := now.Format("2006-01-02")

	// 锁不主动释放，TTL 内同一天的其它实例不会重复执行
	_, ok, err := s.locker.Acquire(ctx, cache.JobLockKey(balanceJob, runKey), s.lockTTL)
	if err != nil {
		return false, fmt.Errorf("failed to acquire job lock: %w", err)
	}
	if !ok {
		s.logger.Info("Balance recompute already claimed by another instance", zap.String("run_key", runKey))
		return false, nil
	}

	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()
	s.logger.Info("Starting scheduled balance recompute",
		zap.String("run_key", runKey),
		zap.Int("year", now.Year()),
	)

	res, err := s.runner.Recompute(ctx, service.RecomputeOptions{
		Trigger:    queue.ReasonSchedule,
		Year:       now.Year(),
		ActiveOnly: true,
	})
	if err != nil {
		return true, fmt.Errorf("scheduled balance recompute failed: %w", err)
	}

	s.logger.Info("Scheduled balance recompute completed",
		zap.Int("processed", res.Processed),
		zap.Int("updated", res.Updated),
		zap.Int("failed", len(res.Failures)),
	)
	return true, nil
}

// LastRun 最近一次实际执行的时间
func (s *BalanceScheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// NextRun 计算 from 之后下一次 hour:minute（from 所在时区）
func NextRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Loop 按配置的时刻每天触发一次，直到 ctx 取消
func (s *BalanceScheduler) Loop(ctx context.Context) {
	hour, minute := config.Cfg.BalanceScheduleHour, config.Cfg.BalanceScheduleMinute

	for {
		now := time.Now()
		next := NextRun(now, hour, minute)
		delay := next.Sub(now)
		s.logger.Info("Scheduled next balance recompute",
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
			if _, err := s.RunDaily(runCtx); err != nil {
				s.logger.Error("Balance recompute run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
