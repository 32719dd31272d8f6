package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"HRCore/config"
	"HRCore/internal/authz"
	"HRCore/internal/cache"
	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/queue"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/pkg/metrics"
	"HRCore/storage/database"
	"HRCore/utils"
)

var (
	balanceService *BalanceService
	balanceOnce    sync.Once
)

func Balance() *BalanceService {
	balanceOnce.Do(func() {
		db := database.DB()
		balanceService = NewBalanceService(BalanceDeps{
			Balances:  repository.NewBalanceRepository(db),
			Employees: repository.NewEmployeeRepository(db),
			Policies:  repository.NewPolicyRepository(db),
			Leaves:    repository.NewLeaveRepository(db),
			Locker:    cache.NewRedisLocker(),
			Queue:     queue.NewProducer(),
			Workers:   config.Cfg.BalanceWorkers,
			LockTTL:   time.Duration(config.Cfg.BalanceLockSeconds) * time.Second,
		})
	})
	return balanceService
}

type BalanceDeps struct {
	Balances  BalanceStore
	Employees EmployeeStore
	Policies  PolicyStore
	Leaves    LeaveStore
	Locker    cache.Locker
	Queue     RecomputeQueue
	Workers   int
	LockTTL   time.Duration
}

// BalanceService 年假余额的重算、查询与导出
type BalanceService struct {
	deps BalanceDeps
	now  func() time.Time
}

func NewBalanceService(deps BalanceDeps) *BalanceService {
	if deps.Workers < 1 {
		deps.Workers = 1
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = time.Minute
	}
	return &BalanceService{deps: deps, now: func() time.Time { return time.Now().UTC() }}
}

// RecomputeOptions Year 为 0 时取当前年份
type RecomputeOptions struct {
	EmployeeID *int64
	Trigger    string
	Year       int
	ActiveOnly bool
	DryRun     bool
}

type RecomputeFailure struct {
	Error      string `json:"error"`
	EmployeeID int64  `json:"employee_id"`
}

type RecomputeResult struct {
	Failures  []RecomputeFailure `json:"failures"`
	Items     []dto.BalanceItem  `json:"items"`
	Year      int                `json:"year"`
	Processed int                `json:"processed"`
	Updated   int                `json:"updated"`
	DryRun    bool               `json:"dry_run"`
}

// Recompute 整行重建所选员工在 Year 年的余额。
// 单个员工失败只记录到 Failures，不中断整批；同一输入重复执行结果相同
func (s *BalanceService) Recompute(ctx context.Context, opts RecomputeOptions) (*RecomputeResult, error) {
	started := time.Now()
	if opts.Year == 0 {
		opts.Year = s.now().Year()
	}
	if opts.Trigger == "" {
		opts.Trigger = queue.ReasonManual
	}

	policies, err := s.deps.Policies.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load vacation policy: %w", err)
	}
	tiers := make([]leave.Tier, len(policies))
	for i, p := range policies {
		tiers[i] = p.Tier()
	}

	employees, err := s.deps.Employees.ListForRecompute(ctx, opts.EmployeeID, opts.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	res := &RecomputeResult{
		Year:      opts.Year,
		Processed: len(employees),
		DryRun:    opts.DryRun,
		Failures:  []RecomputeFailure{},
		Items:     make([]dto.BalanceItem, 0, len(employees)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deps.Workers)

	for i := range employees {
		emp := employees[i]
		g.Go(func() error {
			row, persisted, err := s.recomputeOne(gctx, emp, opts.Year, tiers, opts.DryRun)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, RecomputeFailure{EmployeeID: emp.ID, Error: err.Error()})
				logger.Logger.Warn("Balance recompute failed for employee",
					zap.Int64("employee_id", emp.ID),
					zap.Int("year", opts.Year),
					zap.Error(err),
				)
				return nil
			}
			if persisted {
				res.Updated++
			}
			res.Items = append(res.Items, dto.NewBalanceItem(row))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("balance recompute interrupted: %w", err)
	}

	sort.Slice(res.Items, func(i, j int) bool { return res.Items[i].EmployeeID < res.Items[j].EmployeeID })
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].EmployeeID < res.Failures[j].EmployeeID })

	elapsed := time.Since(started)
	metrics.RecordRecompute(ctx, opts.Trigger, opts.DryRun, res.Processed, res.Updated, len(res.Failures), elapsed)
	logger.Logger.Info("Balance recompute finished",
		zap.Int("year", opts.Year),
		zap.String("trigger", opts.Trigger),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("processed", res.Processed),
		zap.Int("updated", res.Updated),
		zap.Int("failed", len(res.Failures)),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

// recomputeOne 返回计算结果与是否已写入
func (s *BalanceService) recomputeOne(ctx context.Context, emp model.Employee, year int, tiers []leave.Tier, dryRun bool) (model.AnnualBalance, bool, error) {
	if !dryRun {
		release, ok, err := s.deps.Locker.Acquire(ctx, cache.BalanceLockKey(emp.ID, year), s.deps.LockTTL)
		if err != nil {
			return model.AnnualBalance{}, false, err
		}
		if !ok {
			return model.AnnualBalance{}, false, errors.BalanceLocked
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Logger.Warn("Failed to release balance lock", zap.Int64("employee_id", emp.ID), zap.Error(err))
			}
		}()
	}

	var prevAvailable *decimal.Decimal
	prev, err := s.deps.Balances.Get(ctx, emp.ID, year-1)
	switch {
	case err == nil:
		prevAvailable = &prev.DaysAvailable
	case !stderrors.Is(err, gorm.ErrRecordNotFound):
		return model.AnnualBalance{}, false, fmt.Errorf("load %d balance: %w", year-1, err)
	}

	from, to := utils.YearBounds(year)
	taken, err := s.deps.Leaves.SumApproved(ctx, emp.ID, from, to)
	if err != nil {
		return model.AnnualBalance{}, false, fmt.Errorf("sum approved requests: %w", err)
	}

	result := leave.Compute(leave.Input{
		EmployeeID:    emp.ID,
		Year:          year,
		SeniorityRef:  leave.SeniorityReference(emp.SeniorityDate, emp.HireDate),
		Tiers:         tiers,
		PrevAvailable: prevAvailable,
		Taken:         taken,
	})
	row := model.BalanceFromResult(result)
	if dryRun {
		return row, false, nil
	}

	if err := s.deps.Balances.Upsert(ctx, &row); err != nil {
		return model.AnnualBalance{}, false, fmt.Errorf("upsert balance: %w", err)
	}
	return row, true, nil
}

// RecomputeMessage 队列消费者入口
func (s *BalanceService) RecomputeMessage(ctx context.Context, msg queue.BalanceRecomputeMessage) error {
	trigger := msg.Reason
	if trigger == "" {
		trigger = queue.ReasonManual
	}
	_, err := s.Recompute(ctx, RecomputeOptions{
		EmployeeID: msg.EmployeeID,
		Trigger:    trigger,
		Year:       msg.Year,
		ActiveOnly: msg.ActiveOnly,
	})
	return err
}

// Rebuild 接口入口：同步执行或投递到队列
func (s *BalanceService) Rebuild(ctx context.Context, actor authz.Actor, req dto.RebuildRequest) (*RecomputeResult, string, error) {
	if err := authz.Authorize(actor, authz.BalanceRecompute, authz.Resource{Kind: "balance"}); err != nil {
		return nil, "", err
	}

	year := s.now().Year()
	if req.Year != nil {
		year = *req.Year
	}

	if req.Async && !req.DryRun {
		id, err := s.deps.Queue.RequestRecompute(ctx, queue.BalanceRecomputeMessage{
			Year:        year,
			EmployeeID:  req.EmployeeID,
			ActiveOnly:  req.ActiveOnly,
			Reason:      queue.ReasonManual,
			RequestedBy: actor.AccountID,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to enqueue balance recompute: %w", err)
		}
		return nil, id, nil
	}

	res, err := s.Recompute(ctx, RecomputeOptions{
		EmployeeID: req.EmployeeID,
		Trigger:    queue.ReasonManual,
		Year:       year,
		ActiveOnly: req.ActiveOnly,
		DryRun:     req.DryRun,
	})
	return res, "", err
}

func (s *BalanceService) List(ctx context.Context, actor authz.Actor, q dto.BalanceQuery) ([]model.AnnualBalance, int64, error) {
	employeeID, err := scopeEmployee(actor, q.EmployeeID)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.deps.Balances.List(ctx, repository.BalanceFilter{
		EmployeeID: employeeID,
		Year:       q.Year,
		Page:       toPage(q.PageQuery),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list balances: %w", err)
	}
	return items, total, nil
}

var exportHeader = []interface{}{
	"employee_id", "number", "name", "year",
	"days_assigned", "days_carried", "days_taken", "days_available", "expires_on",
}

// Export 生成某年份余额的 XLSX
func (s *BalanceService) Export(ctx context.Context, actor authz.Actor, year int) (*bytes.Buffer, error) {
	if err := authz.Authorize(actor, authz.BalanceExport, authz.Resource{Kind: "balance"}); err != nil {
		return nil, err
	}

	items, employees, err := s.deps.Balances.ListYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	byID := make(map[int64]model.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := fmt.Sprintf("Balances %d", year)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, b := range items {
		emp := byID[b.EmployeeID]
		row := []interface{}{
			b.EmployeeID, emp.Number, emp.FullName(), b.Year,
			b.DaysAssigned.InexactFloat64(), b.DaysCarried.InexactFloat64(),
			b.DaysTaken.InexactFloat64(), b.DaysAvailable.InexactFloat64(),
			utils.FormatDate(b.ExpiresOn),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}
