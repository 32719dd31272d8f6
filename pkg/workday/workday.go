// Package workday 工作日计数
package workday

import (
	"strings"
	"time"
)

// Mask 7 位工作日掩码，bit0 = 周日 ... bit6 = 周六
type Mask uint8

// DefaultMask 周一至周五
const DefaultMask Mask = 0b0111110

const fullMask Mask = 0b1111111

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Valid 只允许低 7 位
func (m Mask) Valid() bool {
	return m&^fullMask == 0
}

// Works 该日期是否为排班工作日
func (m Mask) Works(d time.Time) bool {
	return m&(1<<BitIndex(d)) != 0
}

// Days 形如 "Mon,Tue,Wed"
func (m Mask) Days() string {
	names := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		if m&(1<<i) != 0 {
			names = append(names, weekdayNames[i])
		}
	}
	return strings.Join(names, ",")
}

// BitIndex 周日 = 0 ... 周六 = 6。
// 以周一为 0 的星期序号 w 映射为 (w+1) mod 7。
func BitIndex(d time.Time) int {
	mondayBased := (int(d.Weekday()) + 6) % 7
	return (mondayBased + 1) % 7
}

// Holidays 按日历日期精确匹配
type Holidays map[int]struct{}

func NewHolidays(dates ...time.Time) Holidays {
	h := make(Holidays, len(dates))
	for _, d := range dates {
		h.Add(d)
	}
	return h
}

func (h Holidays) Add(d time.Time) {
	h[dayKey(d)] = struct{}{}
}

func (h Holidays) Contains(d time.Time) bool {
	if h == nil {
		return false
	}
	_, ok := h[dayKey(d)]
	return ok
}

func (h Holidays) Len() int {
	return len(h)
}

// Count 统计 [start, end] 内既是排班工作日又不是节假日的天数。
// start 晚于 end 时返回 0。
func Count(start, end time.Time, mask Mask, holidays Holidays) int {
	first, last := civil(start), civil(end)
	if first.After(last) {
		return 0
	}

	total := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if holidays.Contains(d) {
			continue
		}
		if mask.Works(d) {
			total++
		}
	}
	return total
}

// Dates 返回 [start, end] 内所有计入的日期
func Dates(start, end time.Time, mask Mask, holidays Holidays) []time.Time {
	first, last := civil(start), civil(end)
	var out []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !holidays.Contains(d) && mask.Works(d) {
			out = append(out, d)
		}
	}
	return out
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
