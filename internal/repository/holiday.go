package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"HRCore/internal/model"
)

type HolidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) Get(ctx context.Context, id int64) (*model.Holiday, error) {
	var h model.Holiday
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// Between 闭区间 [from, to] 内的节假日，按日期升序
func (r *HolidayRepository) Between(ctx context.Context, from, to time.Time) ([]model.Holiday, error) {
	var items []model.Holiday
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date").
		Find(&items).Error
	return items, err
}

// Recurring 带 RRULE 的节假日
func (r *HolidayRepository) Recurring(ctx context.Context) ([]model.Holiday, error) {
	var items []model.Holiday
	err := r.db.WithContext(ctx).Where("recurrence <> ''").Order("date").Find(&items).Error
	return items, err
}

// DateTaken 日期是否已被其它记录占用
func (r *HolidayRepository) DateTaken(ctx context.Context, date time.Time, exceptID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Holiday{}).
		Where("date = ? AND id <> ?", date, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *HolidayRepository) Save(ctx context.Context, h *model.Holiday) error {
	return r.db.WithContext(ctx).Save(h).Error
}

// Delete 物理删除，日期唯一索引不受软删除行影响
func (r *HolidayRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Holiday{}, id)
	return result.RowsAffected, result.Error
}

// UpsertByDate 按日期插入或更新名称，返回写入行数
func (r *HolidayRepository) UpsertByDate(ctx context.Context, items []model.Holiday) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).CreateInBatches(items, 200)
	return result.RowsAffected, result.Error
}
