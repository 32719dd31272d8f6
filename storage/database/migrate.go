package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"HRCore/internal/model"
	"HRCore/pkg/logger"
)

// Models 参与迁移的全部表，cmd/gen 也从这里读取
func Models() []interface{} {
	return []interface{}{
		&model.Account{},
		&model.WorkSchedule{},
		&model.Location{},
		&model.Employee{},
		&model.CheckIn{},
		&model.Justification{},
		&model.Holiday{},
		&model.LeaveRequest{},
		&model.PermissionType{},
		&model.Permission{},
		&model.VacationPolicyTier{},
		&model.AnnualBalance{},
	}
}

// Migrate 运行数据库迁移
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	if err := db.AutoMigrate(Models()...); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
