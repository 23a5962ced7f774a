package report

import (
	"fmt"
	"strings"
	"time"
)

const (
	GroupByNone        = "None"
	GroupByDay         = "Daily"
	GroupByWeek        = "Weekly"
	GroupByWeekOfMonth = "WeeklyOfMonth"
)

// ParseGroupBy maps a query value onto one of the GroupBy constants. An
// empty value means GroupByNone.
func ParseGroupBy(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return GroupByNone, nil
	case "daily", "day":
		return GroupByDay, nil
	case "weekly", "week":
		return GroupByWeek, nil
	case "weeklyofmonth", "weekofmonth":
		return GroupByWeekOfMonth, nil
	}
	return "", fmt.Errorf("unknown grouping %q", s)
}

// GetWeekOfMonth returns the 1-based Monday-started week of t within its month.
func GetWeekOfMonth(t time.Time) int {
	year, month, _ := t.Date()
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	firstMonday, _ := GetWeekRange(firstOfMonth)
	tMonday, _ := GetWeekRange(t)

	return int(tMonday.Sub(firstMonday).Hours()/24/7) + 1
}

// GetWeekRange returns the Monday and Sunday of t's week.
func GetWeekRange(t time.Time) (time.Time, time.Time) {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	start := t.AddDate(0, 0, -offset+1)
	end := start.AddDate(0, 0, 6)
	return start, end
}

// GetGroupKey returns a key that sorts chronologically as a string.
func GetGroupKey(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByDay:
		return t.Format("2006-01-02")
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupByWeekOfMonth:
		year, month, _ := t.Date()
		return fmt.Sprintf("%d-%02d-W%d", year, month, GetWeekOfMonth(t))
	}
	return ""
}

func GetGroupTitle(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByDay:
		return t.Format("Monday, 02 Jan 2006")
	case GroupByWeek:
		start, end := GetWeekRange(t)
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	case GroupByWeekOfMonth:
		start, end := GetWeekRange(t)

		// Clamp to month of t
		year, month, _ := t.Date()
		firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
		lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
		if start.Before(firstOfMonth) {
			start = firstOfMonth
		}
		if end.After(lastOfMonth) {
			end = lastOfMonth
		}
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	}
	return ""
}
