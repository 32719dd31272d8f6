package model

import "time"

// Holiday 全局节假日，计数时按日期精确排除。
// Recurrence 为 RRULE，仅用于按年份展开生成具体日期
type Holiday struct {
	BaseModel
	Date       time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	Name       string    `gorm:"type:varchar(120);not null" json:"name"`
	Recurrence string    `gorm:"type:varchar(255);not null;default:''" json:"recurrence,omitempty"`
}

func (Holiday) TableName() string {
	return "holidays"
}
