package model

import "HRCore/pkg/geo"

// Location 工作地点，带圆形地理围栏
type Location struct {
	BaseModel
	Name      string  `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Latitude  float64 `gorm:"type:numeric(9,6);not null" json:"latitude"`
	Longitude float64 `gorm:"type:numeric(9,6);not null" json:"longitude"`
	RadiusM   int     `gorm:"not null;default:150" json:"radius_m"`
	Active    bool    `gorm:"not null;default:true" json:"active"`
}

func (Location) TableName() string {
	return "locations"
}

func (l *Location) Fence() *geo.Fence {
	if l == nil {
		return nil
	}
	return &geo.Fence{Latitude: l.Latitude, Longitude: l.Longitude, RadiusM: l.RadiusM}
}

// WorkSchedule 排班，WorkMask bit0 = 周日
type WorkSchedule struct {
	BaseModel
	Name     string `gorm:"type:varchar(80);uniqueIndex;not null" json:"name"`
	WorkMask int16  `gorm:"not null;default:62" json:"work_mask"`
}

func (WorkSchedule) TableName() string {
	return "work_schedules"
}
