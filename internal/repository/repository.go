// Package repository gorm 实现的存储层，服务层只依赖 service 包中声明的接口
package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"HRCore/internal/leave"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Page 分页参数，页码从 1 开始
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

func (p Page) Limit() int {
	return p.Normalize().PageSize
}

func paginate(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit())
	}
}

// overlapping [from, to] 与 start_date..end_date 有交集
func overlapping(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("start_date <= ? AND end_date >= ?", to, from)
	}
}

// readReplica 报表类查询显式走副本；未注册副本时 dbresolver 子句无副作用
func readReplica(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Read)
}

func statesToStrings(states []leave.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}
