package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSeniorityYears(t *testing.T) {
	cases := []struct {
		ref  *time.Time
		year int
		want int
	}{
		{day("2020-01-01"), 2025, 5},
		{day("2020-01-02"), 2025, 4},
		{day("2019-12-31"), 2025, 5},
		{day("2025-01-01"), 2025, 0},
		{day("2025-06-01"), 2025, 0},
		{day("2030-01-01"), 2025, 0},
		{nil, 2025, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeniorityYears(tc.ref, tc.year))
	}
}

func TestSeniorityReference(t *testing.T) {
	hire := day("2018-03-01")
	sen := day("2015-07-01")
	assert.Equal(t, sen, SeniorityReference(sen, hire))
	assert.Equal(t, hire, SeniorityReference(nil, hire))
	assert.Equal(t, hire, SeniorityReference(&time.Time{}, hire))
	assert.Nil(t, SeniorityReference(nil, nil))
}

func TestPickTier(t *testing.T) {
	tiers := []Tier{
		{ID: 3, YearsFrom: 5, YearsTo: 10, Days: 12, Active: true},
		{ID: 1, YearsFrom: 0, YearsTo: 4, Days: 6, Active: true},
		{ID: 2, YearsFrom: 3, YearsTo: 8, Days: 9, Active: true},
		{ID: 4, YearsFrom: 11, YearsTo: 40, Days: 20, Active: false},
	}

	require.NotNil(t, PickTier(tiers, 0))
	assert.Equal(t, int64(1), PickTier(tiers, 0).ID)
	// 区间重叠时取 YearsFrom 最小者
	assert.Equal(t, int64(1), PickTier(tiers, 4).ID)
	assert.Equal(t, int64(2), PickTier(tiers, 5).ID)
	assert.Equal(t, int64(3), PickTier(tiers, 9).ID)
	// 无效区间被跳过
	assert.Nil(t, PickTier(tiers, 15))
	// 原切片顺序不变
	assert.Equal(t, int64(3), tiers[0].ID)
}

func TestComputeEndToEndScenario(t *testing.T) {
	res := Compute(Input{
		EmployeeID:   7,
		Year:         2025,
		SeniorityRef: day("2020-01-01"),
		Tiers:        []Tier{{ID: 1, YearsFrom: 5, YearsTo: 10, Days: 12, MaxCarryover: 4, Active: true}},
		Taken:        dec(5),
	})

	assert.Equal(t, 5, res.SeniorityYears)
	require.NotNil(t, res.TierID)
	assert.True(t, res.Assigned.Equal(dec(12)))
	assert.True(t, res.Carried.Equal(dec(0)))
	assert.True(t, res.Taken.Equal(dec(5)))
	assert.True(t, res.Available.Equal(dec(7)))
	assert.Equal(t, *day("2025-12-31"), res.ExpiresOn)
}

func TestComputeCarryover(t *testing.T) {
	tiers := []Tier{{ID: 1, YearsFrom: 0, YearsTo: 50, Days: 12, MaxCarryover: 4, Active: true}}

	cases := []struct {
		name string
		prev *decimal.Decimal
		want int64
	}{
		{"no prior record", nil, 0},
		{"capped", ptrDec(10), 4},
		{"below cap", ptrDec(3), 3},
		{"negative prior", ptrDec(-2), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Compute(Input{Year: 2025, SeniorityRef: day("2015-01-01"), Tiers: tiers, PrevAvailable: tc.prev})
			assert.True(t, res.Carried.Equal(dec(tc.want)), res.Carried.String())
			assert.True(t, res.Available.Equal(dec(12+tc.want)))
		})
	}
}

func TestComputeWithoutTier(t *testing.T) {
	res := Compute(Input{
		Year:          2025,
		SeniorityRef:  day("2024-06-01"),
		Tiers:         []Tier{{ID: 1, YearsFrom: 1, YearsTo: 4, Days: 6, MaxCarryover: 2, Active: true}},
		PrevAvailable: ptrDec(5),
		Taken:         dec(3),
	})

	assert.Nil(t, res.TierID)
	assert.True(t, res.Assigned.IsZero())
	assert.True(t, res.Carried.IsZero())
	// 不足时不出现负数
	assert.True(t, res.Available.IsZero())
}

func TestComputeDeterministic(t *testing.T) {
	in := Input{
		EmployeeID:    1,
		Year:          2026,
		SeniorityRef:  day("2010-05-10"),
		Tiers:         []Tier{{ID: 9, YearsFrom: 10, YearsTo: 20, Days: 18, MaxCarryover: 6, Active: true}},
		PrevAvailable: ptrDec(8),
		Taken:         dec(4),
	}
	a, b := Compute(in), Compute(in)
	assert.Equal(t, a.TierID, b.TierID)
	for _, pair := range [][2]decimal.Decimal{
		{a.Assigned, b.Assigned},
		{a.Carried, b.Carried},
		{a.Taken, b.Taken},
		{a.Available, b.Available},
	} {
		assert.Equal(t, pair[0].String(), pair[1].String())
	}
	assert.Equal(t, "6", a.Carried.String())
	assert.Equal(t, "20", a.Available.String())
}

func TestAffectedYears(t *testing.T) {
	assert.Equal(t, []int{2024, 2025}, AffectedYears(*day("2024-12-30"), *day("2025-01-03")))
	assert.Equal(t, []int{2025}, AffectedYears(*day("2025-03-03"), *day("2025-03-07")))
	assert.Nil(t, AffectedYears(*day("2025-03-07"), *day("2025-03-03")))

	assert.True(t, OverlapsYear(*day("2024-12-30"), *day("2025-01-03"), 2025))
	assert.False(t, OverlapsYear(*day("2024-12-01"), *day("2024-12-03"), 2025))
}

func ptrDec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
