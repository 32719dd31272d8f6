package workday

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ExpandRule 把 RRULE 展开为 year 年内的具体日期。
// anchor 为规则起点，规则未指定 DTSTART 时使用。
func ExpandRule(rule string, anchor time.Time, year int) ([]time.Time, error) {
	rule = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if rule == "" {
		return nil, fmt.Errorf("empty recurrence rule")
	}

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("parse rrule %q: %w", rule, err)
	}
	if opt.Dtstart.IsZero() {
		start := civil(anchor)
		if start.Year() > year {
			start = start.AddDate(year-start.Year(), 0, 0)
		}
		opt.Dtstart = start
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build rrule %q: %w", rule, err)
	}

	set := rrule.Set{}
	set.RRule(r)

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	occurrences := set.Between(from, to, true)
	out := make([]time.Time, 0, len(occurrences))
	for _, o := range occurrences {
		out = append(out, civil(o))
	}
	return out, nil
}
