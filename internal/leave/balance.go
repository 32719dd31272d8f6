package leave

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Tier 按工龄区间划分的年假政策
type Tier struct {
	ID           int64
	YearsFrom    int
	YearsTo      int
	Days         int
	MaxCarryover int
	Active       bool
}

func (t Tier) Contains(years int) bool {
	return t.YearsFrom <= years && years <= t.YearsTo
}

// PickTier 按 YearsFrom 升序取第一个匹配的有效区间，无匹配返回 nil
func PickTier(tiers []Tier, years int) *Tier {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].YearsFrom < sorted[j].YearsFrom
	})

	for i := range sorted {
		if sorted[i].Active && sorted[i].Contains(years) {
			return &sorted[i]
		}
	}
	return nil
}

// SeniorityReference 工龄起算日：优先 seniority，其次 hire
func SeniorityReference(seniority, hire *time.Time) *time.Time {
	if seniority != nil && !seniority.IsZero() {
		return seniority
	}
	if hire != nil && !hire.IsZero() {
		return hire
	}
	return nil
}

// SeniorityYears 截至 year 年 1 月 1 日的整年工龄；起算日缺失或在未来时为 0
func SeniorityYears(ref *time.Time, year int) int {
	if ref == nil {
		return 0
	}
	by, bm, bd := ref.Date()
	cutoff := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	base := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	if base.After(cutoff) {
		return 0
	}

	years := cutoff.Year() - by
	if cutoff.Month() < bm || (cutoff.Month() == bm && cutoff.Day() < bd) {
		years--
	}
	return years
}

// Input 单个员工某一年的计算输入
type Input struct {
	EmployeeID    int64
	Year          int
	SeniorityRef  *time.Time
	Tiers         []Tier
	PrevAvailable *decimal.Decimal // 上一年余额，nil 表示无记录
	Taken         decimal.Decimal  // 与当年有交集的已批准申请天数之和
}

type Result struct {
	EmployeeID     int64
	Year           int
	SeniorityYears int
	TierID         *int64
	Assigned       decimal.Decimal
	Carried        decimal.Decimal
	Taken          decimal.Decimal
	Available      decimal.Decimal
	ExpiresOn      time.Time
}

// Compute 纯计算，相同输入得到相同结果
func Compute(in Input) Result {
	years := SeniorityYears(in.SeniorityRef, in.Year)
	tier := PickTier(in.Tiers, years)

	res := Result{
		EmployeeID:     in.EmployeeID,
		Year:           in.Year,
		SeniorityYears: years,
		Assigned:       decimal.Zero,
		Carried:        decimal.Zero,
		Taken:          in.Taken,
		ExpiresOn:      time.Date(in.Year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	if tier != nil {
		id := tier.ID
		res.TierID = &id
		res.Assigned = decimal.NewFromInt(int64(tier.Days))

		if in.PrevAvailable != nil {
			prev := decimal.Max(decimal.Zero, *in.PrevAvailable)
			res.Carried = decimal.Min(decimal.NewFromInt(int64(tier.MaxCarryover)), prev)
		}
	}

	res.Available = decimal.Max(decimal.Zero, res.Assigned.Add(res.Carried).Sub(res.Taken))
	return res
}

// OverlapsYear [start, end] 是否与 year 年有交集
func OverlapsYear(start, end time.Time, year int) bool {
	return start.Year() <= year && end.Year() >= year
}

// AffectedYears 区间覆盖到的所有年份
func AffectedYears(start, end time.Time) []int {
	if end.Before(start) {
		return nil
	}
	years := make([]int, 0, end.Year()-start.Year()+1)
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	return years
}
