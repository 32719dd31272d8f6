package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"HRCore/config"
	"HRCore/internal/authz"
	"HRCore/internal/cache"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/pkg/workday"
	"HRCore/storage/database"
	"HRCore/utils"
)

var (
	holidayService *HolidayService
	holidayOnce    sync.Once
)

func Holiday() *HolidayService {
	holidayOnce.Do(func() {
		ttl := time.Duration(config.Cfg.HolidayCacheMinutes) * time.Minute
		holidayService = NewHolidayService(
			repository.NewHolidayRepository(database.DB()),
			cache.NewProtectedCache("holidays", ttl),
		)
	})
	return holidayService
}

// HolidaySource 计数用的节假日集合
type HolidaySource interface {
	Set(ctx context.Context, from, to time.Time) (workday.Holidays, error)
}

type HolidayService struct {
	store HolidayStore
	cache *cache.ProtectedCache // nil 时直接查库
}

func NewHolidayService(store HolidayStore, pc *cache.ProtectedCache) *HolidayService {
	return &HolidayService{store: store, cache: pc}
}

func yearKey(year int) string {
	return strconv.Itoa(year)
}

// yearDates 按年缓存 ISO 日期列表
func (s *HolidayService) yearDates(ctx context.Context, year int) ([]string, error) {
	load := func(ctx context.Context) ([]string, error) {
		from, to := utils.YearBounds(year)
		items, err := s.store.Between(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to load holidays for %d: %w", year, err)
		}
		dates := make([]string, len(items))
		for i, h := range items {
			dates[i] = utils.FormatDate(h.Date)
		}
		return dates, nil
	}
	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoad(ctx, s.cache, yearKey(year), load)
}

// Set 返回 [from, to] 覆盖年份内的全部节假日
func (s *HolidayService) Set(ctx context.Context, from, to time.Time) (workday.Holidays, error) {
	set := workday.NewHolidays()
	for year := from.Year(); year <= to.Year(); year++ {
		dates, err := s.yearDates(ctx, year)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			t, err := utils.ParseDate(d)
			if err != nil {
				continue
			}
			set.Add(t)
		}
	}
	return set, nil
}

func (s *HolidayService) invalidate(ctx context.Context, years ...int) {
	if s.cache == nil || len(years) == 0 {
		return
	}
	keys := make([]string, len(years))
	for i, y := range years {
		keys[i] = yearKey(y)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Logger.Warn("Failed to invalidate holiday cache", zap.Ints("years", years), zap.Error(err))
	}
}

func (s *HolidayService) List(ctx context.Context, q dto.HolidayQuery) ([]model.Holiday, error) {
	year := q.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	from, to := utils.YearBounds(year)

	if q.From != "" || q.To != "" {
		f, err := parseOptionalDate(q.From)
		if err != nil {
			return nil, err
		}
		t, err := parseOptionalDate(q.To)
		if err != nil {
			return nil, err
		}
		if f != nil {
			from = *f
		}
		if t != nil {
			to = *t
		}
	}

	items, err := s.store.Between(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return items, nil
}

func (s *HolidayService) Create(ctx context.Context, actor authz.Actor, req dto.HolidayRequest) (*model.Holiday, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "holiday"}); err != nil {
		return nil, err
	}
	h := &model.Holiday{}
	if err := s.apply(ctx, h, req); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create holiday: %w", err)
	}
	s.invalidate(ctx, h.Date.Year())
	return h, nil
}

func (s *HolidayService) Update(ctx context.Context, actor authz.Actor, id int64, req dto.HolidayRequest) (*model.Holiday, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "holiday"}); err != nil {
		return nil, err
	}
	h, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.HolidayNotFound, "holiday")
	}
	oldYear := h.Date.Year()
	if err := s.apply(ctx, h, req); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to update holiday: %w", err)
	}
	s.invalidate(ctx, oldYear, h.Date.Year())
	return h, nil
}

func (s *HolidayService) apply(ctx context.Context, h *model.Holiday, req dto.HolidayRequest) error {
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	taken, err := s.store.DateTaken(ctx, date, h.ID)
	if err != nil {
		return fmt.Errorf("failed to check holiday date: %w", err)
	}
	if taken {
		return errors.HolidayDuplicate
	}

	rule := strings.TrimSpace(req.Recurrence)
	if rule != "" {
		if _, err := workday.ExpandRule(rule, date, date.Year()); err != nil {
			return errors.HolidayRuleInvalid.WithMessage("%v", err)
		}
	}

	h.Date = date
	h.Name = strings.TrimSpace(req.Name)
	h.Recurrence = rule
	return nil
}

func (s *HolidayService) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "holiday"}); err != nil {
		return err
	}
	h, err := s.store.Get(ctx, id)
	if err != nil {
		return lookupErr(err, errors.HolidayNotFound, "holiday")
	}
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if n == 0 {
		return errors.HolidayNotFound
	}
	s.invalidate(ctx, h.Date.Year())
	return nil
}

// Expand 把所有带 RRULE 的节假日展开为 year 年的具体日期并按日期写入
func (s *HolidayService) Expand(ctx context.Context, actor authz.Actor, year int) (*dto.ExpandResult, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "holiday"}); err != nil {
		return nil, err
	}

	rules, err := s.store.Recurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring holidays: %w", err)
	}

	seen := make(map[string]bool)
	var items []model.Holiday
	for _, h := range rules {
		dates, err := workday.ExpandRule(h.Recurrence, h.Date, year)
		if err != nil {
			logger.Logger.Warn("Skipping invalid recurrence rule",
				zap.Int64("holiday_id", h.ID),
				zap.String("rule", h.Recurrence),
				zap.Error(err),
			)
			continue
		}
		for _, d := range dates {
			key := utils.FormatDate(d)
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, model.Holiday{Date: d, Name: h.Name})
		}
	}

	n, err := s.store.UpsertByDate(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to store expanded holidays: %w", err)
	}
	s.invalidate(ctx, year)

	res := &dto.ExpandResult{Year: year, Upserted: n, Dates: make([]string, 0, len(items))}
	for _, h := range items {
		res.Dates = append(res.Dates, utils.FormatDate(h.Date))
	}

	logger.Logger.Info("Recurring holidays expanded",
		zap.Int("year", year),
		zap.Int("rules", len(rules)),
		zap.Int64("upserted", n),
	)
	return res, nil
}

// Import 读取第一个工作表的 date、name 两列；日期可为 Excel 序列号或 YYYY-MM-DD
func (s *HolidayService) Import(ctx context.Context, actor authz.Actor, r io.Reader) (*dto.ImportResult, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "holiday"}); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.HolidayImportInvalid.WithMessage("cannot open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.HolidayImportInvalid.WithMessage("cannot read sheet: %v", err)
	}

	res := &dto.ImportResult{Skipped: []dto.ImportRowError{}}
	seen := make(map[string]int)
	var items []model.Holiday
	years := make(map[int]bool)

	for i, row := range rows {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		res.Rows++

		date, name, err := parseHolidayRow(row)
		if err != nil {
			res.Skipped = append(res.Skipped, dto.ImportRowError{Row: i + 1, Error: err.Error()})
			continue
		}
		key := utils.FormatDate(date)
		if idx, dup := seen[key]; dup {
			items[idx].Name = name
			continue
		}
		seen[key] = len(items)
		items = append(items, model.Holiday{Date: date, Name: name})
		years[date.Year()] = true
	}

	n, err := s.store.UpsertByDate(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to import holidays: %w", err)
	}
	res.Upserted = n

	touched := make([]int, 0, len(years))
	for y := range years {
		touched = append(touched, y)
	}
	s.invalidate(ctx, touched...)

	logger.Logger.Info("Holidays imported",
		zap.Int("rows", res.Rows),
		zap.Int64("upserted", n),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

func parseHolidayRow(row []string) (time.Time, string, error) {
	if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
		return time.Time{}, "", fmt.Errorf("name is required")
	}
	name := strings.TrimSpace(row[1])
	if len(name) > 120 {
		return time.Time{}, "", fmt.Errorf("name is longer than 120 characters")
	}

	raw := strings.TrimSpace(row[0])
	if t, err := utils.ParseDate(raw); err == nil {
		return t, name, nil
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid date %q", raw)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid date serial %q: %w", raw, err)
	}
	return utils.DateOf(t), name, nil
}
