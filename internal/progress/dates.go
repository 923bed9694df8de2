package progress

import (
	"fmt"
	"time"
)

const (
	// DateLayout 是边界上统一使用的日期格式
	DateLayout = "2006-01-02"
	// MonthLayout 对应 month_year 字段
	MonthLayout = "2006-01"
)

// ParseDate 严格解析 YYYY-MM-DD，结果为 UTC 零点
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, invalid("date", value, "is required")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, invalid("date", value, "must be YYYY-MM-DD")
	}
	return t, nil
}

func parseField(field, value string) (time.Time, error) {
	t, err := ParseDate(value)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			verr.Field = field
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatDate 输出 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today 以 t 所在时区的日历日期返回当天
func Today(t time.Time) string {
	return FormatDate(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

// MonthYear 返回 YYYY-MM
func MonthYear(t time.Time) string {
	return t.Format(MonthLayout)
}

// InWindow 判断 date 是否落在 [start, end] 闭区间。
// ISO 日期的字典序与时间顺序一致，调用方须保证三者格式合法。
func InWindow(date, start, end string) bool {
	return start <= date && date <= end
}

// DaysInRange 返回 [start, end] 内的每一天
func DaysInRange(start, end string) ([]string, error) {
	from, err := parseField("start", start)
	if err != nil {
		return nil, err
	}
	to, err := parseField("end", end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	days := make([]string, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDate(d))
	}
	return days, nil
}

// AddDays 在日期字符串上偏移 n 天
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// WeekStart 返回 t 所在周的周一
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()-weekday+1, 0, 0, 0, 0, t.Location())
}

// WeekEnd 返回 t 所在周的周日
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

// Weekday 返回日期对应的星期，周日为 0
func Weekday(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}
