package workday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBitIndex(t *testing.T) {
	// 2025-01-05 为周日
	for i := 0; i < 7; i++ {
		d := date("2025-01-05").AddDate(0, 0, i)
		assert.Equal(t, i, BitIndex(d), d.Weekday().String())
	}
}

func TestCount(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		mask     Mask
		holidays []string
		want     int
	}{
		{"mon-fri week", "2025-01-06", "2025-01-10", DefaultMask, nil, 5},
		{"holiday inside week", "2025-01-06", "2025-01-10", DefaultMask, []string{"2025-01-08"}, 4},
		{"weekend only", "2025-01-11", "2025-01-12", DefaultMask, nil, 0},
		{"start after end", "2025-01-10", "2025-01-06", DefaultMask, nil, 0},
		{"single day", "2025-01-06", "2025-01-06", DefaultMask, nil, 1},
		{"holiday outside range ignored", "2025-01-06", "2025-01-10", DefaultMask, []string{"2025-01-13"}, 5},
		{"six day schedule", "2025-01-06", "2025-01-12", DefaultMask | 1<<6, nil, 6},
		{"empty mask", "2025-01-06", "2025-01-12", 0, nil, 0},
		{"full mask with holiday", "2025-01-06", "2025-01-12", fullMask, []string{"2025-01-12"}, 6},
		{"across year end", "2024-12-30", "2025-01-03", DefaultMask, []string{"2025-01-01"}, 4},
		{"march 2025 week", "2025-03-03", "2025-03-07", DefaultMask, nil, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHolidays()
			for _, s := range tc.holidays {
				h.Add(date(s))
			}
			assert.Equal(t, tc.want, Count(date(tc.start), date(tc.end), tc.mask, h))
		})
	}
}

func TestCountIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	start := time.Date(2025, 1, 6, 23, 30, 0, 0, loc)
	end := time.Date(2025, 1, 10, 0, 1, 0, 0, loc)
	h := NewHolidays(time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, 4, Count(start, end, DefaultMask, h))
}

func TestCountNilHolidays(t *testing.T) {
	assert.Equal(t, 5, Count(date("2025-01-06"), date("2025-01-10"), DefaultMask, nil))
}

func TestMask(t *testing.T) {
	assert.True(t, DefaultMask.Valid())
	assert.False(t, Mask(128).Valid())
	assert.Equal(t, "Mon,Tue,Wed,Thu,Fri", DefaultMask.Days())
	assert.True(t, DefaultMask.Works(date("2025-01-06")))
	assert.False(t, DefaultMask.Works(date("2025-01-11")))
}

func TestDates(t *testing.T) {
	got := Dates(date("2025-01-06"), date("2025-01-12"), DefaultMask, NewHolidays(date("2025-01-08")))
	require.Len(t, got, 4)
	assert.Equal(t, date("2025-01-06"), got[0])
	assert.Equal(t, date("2025-01-10"), got[3])
}

func TestExpandRule(t *testing.T) {
	// 墨西哥宪法日：二月第一个周一
	got, err := ExpandRule("FREQ=YEARLY;BYMONTH=2;BYDAY=1MO", date("2020-02-03"), 2025)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, date("2025-02-03"), got[0])

	got, err = ExpandRule("RRULE:FREQ=YEARLY", date("2019-09-16"), 2025)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, date("2025-09-16"), got[0])

	// 锚点晚于目标年份时平移到目标年份
	got, err = ExpandRule("FREQ=YEARLY", date("2030-12-25"), 2025)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, date("2025-12-25"), got[0])
}

func TestExpandRuleInvalid(t *testing.T) {
	_, err := ExpandRule("", date("2025-01-01"), 2025)
	assert.Error(t, err)

	_, err = ExpandRule("FREQ=SOMETIMES", date("2025-01-01"), 2025)
	assert.Error(t, err)
}
