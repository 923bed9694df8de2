package progress

import (
	"time"

	"github.com/deepwork/internal/db"
)

// CalendarDay 是月历中的一格
type CalendarDay struct {
	Date    string `json:"date"`
	InMonth bool   `json:"in_month"`
	// IsCompleted 当天任意一个任务打卡完成即为 true
	IsCompleted       bool     `json:"is_completed"`
	MarksCompleted    int      `json:"marks_completed"`
	MarksTotal        int      `json:"marks_total"`
	SubtasksCount     int      `json:"subtasks_count"`
	SubtasksCompleted int      `json:"subtasks_completed"`
	Notes             []string `json:"notes"`
	NotesHTML         []string `json:"notes_html,omitempty"`
}

// CalendarMonth 以周一为一周开始的月历，前后用相邻月份补齐整周
type CalendarMonth struct {
	Month         string        `json:"month"`
	Start         string        `json:"start"`
	End           string        `json:"end"`
	Days          []CalendarDay `json:"days"`
	CompletedDays int           `json:"completed_days"`
}

// CalendarBounds 返回月历网格的首尾日期，供调用方按区间取数
func CalendarBounds(month string) (string, string, error) {
	first, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", "", invalid("month", month, "must be YYYY-MM")
	}
	last := first.AddDate(0, 1, -1)
	return FormatDate(WeekStart(first)), FormatDate(WeekEnd(last)), nil
}

// BuildCalendarMonth 汇总网格内每一天的打卡与行动情况
func BuildCalendarMonth(month string, marks []db.DailyMark, subtasks []db.DailySubtask) (CalendarMonth, error) {
	start, end, err := CalendarBounds(month)
	if err != nil {
		return CalendarMonth{}, err
	}
	days, err := DaysInRange(start, end)
	if err != nil {
		return CalendarMonth{}, err
	}

	index := make(map[string]int, len(days))
	cal := CalendarMonth{Month: month, Start: start, End: end, Days: make([]CalendarDay, len(days))}
	for i, day := range days {
		index[day] = i
		cal.Days[i] = CalendarDay{Date: day, InMonth: day[:7] == month, Notes: []string{}}
	}

	for _, mark := range marks {
		if _, err := parseField("mark.date", mark.Date); err != nil {
			return CalendarMonth{}, err
		}
		i, ok := index[mark.Date]
		if !ok {
			continue
		}
		day := &cal.Days[i]
		day.MarksTotal++
		if mark.Completed {
			day.MarksCompleted++
			day.IsCompleted = true
		}
		if mark.Notes != nil && *mark.Notes != "" {
			day.Notes = append(day.Notes, *mark.Notes)
		}
	}

	for _, subtask := range subtasks {
		if _, err := parseField("subtask.date", subtask.Date); err != nil {
			return CalendarMonth{}, err
		}
		i, ok := index[subtask.Date]
		if !ok {
			continue
		}
		cal.Days[i].SubtasksCount++
		if subtask.Completed {
			cal.Days[i].SubtasksCompleted++
		}
	}

	for _, day := range cal.Days {
		if day.InMonth && day.IsCompleted {
			cal.CompletedDays++
		}
	}
	return cal, nil
}
