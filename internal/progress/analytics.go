package progress

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/deepwork/internal/db"
)

// Overview 汇总区间内的完成率与连胜
type Overview struct {
	TotalMarks            int `json:"total_marks"`
	CompletedMarks        int `json:"completed_marks"`
	CompletionRate        int `json:"completion_rate"`
	CurrentStreak         int `json:"current_streak"`
	LongestStreak         int `json:"longest_streak"`
	TotalActions          int `json:"total_actions"`
	CompletedActions      int `json:"completed_actions"`
	ActionsCompletionRate int `json:"actions_completion_rate"`
	ActiveTasks           int `json:"active_tasks"`
	ActiveMonthlyGoals    int `json:"active_monthly_goals"`
	ActiveWeeklyGoals     int `json:"active_weekly_goals"`
}

// Streak 当前连胜与历史最长连胜
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// TrendPoint 趋势序列中的单日数据
type TrendPoint struct {
	Date           string `json:"date"`
	Completed      int    `json:"completed"`
	Total          int    `json:"total"`
	CompletionRate int    `json:"completion_rate"`
}

// BreakdownItem 按任务名统计的完成次数
type BreakdownItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// WeekdayBucket 按星期统计的完成次数，Day 周日为 0
type WeekdayBucket struct {
	Day   int    `json:"day"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// TaskStreak 单个任务的连胜信息
type TaskStreak struct {
	TaskID            string `json:"task_id"`
	TaskName          string `json:"task_name"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastCompletedDate string `json:"last_completed_date,omitempty"`
}

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Percentage 返回 round(100*part/total)，total 为 0 时定义为 0
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// ComputeOverview 计算打卡完成率、行动完成率与连胜。
// 月度/周目标数量直接取入参长度，过滤由调用方完成。
func ComputeOverview(marks []db.DailyMark, subtasks []db.DailySubtask, monthlyGoals []db.MonthlyGoal, weeklyGoals []db.WeeklyGoal, tasks []db.Task) (Overview, error) {
	streak, err := ComputeStreaks(marks)
	if err != nil {
		return Overview{}, err
	}

	overview := Overview{
		TotalMarks:         len(marks),
		CurrentStreak:      streak.Current,
		LongestStreak:      streak.Longest,
		ActiveTasks:        len(tasks),
		ActiveMonthlyGoals: len(monthlyGoals),
		ActiveWeeklyGoals:  len(weeklyGoals),
	}

	for _, mark := range marks {
		if mark.Completed {
			overview.CompletedMarks++
		}
	}

	for _, subtask := range subtasks {
		if _, err := parseField("subtask.date", subtask.Date); err != nil {
			return Overview{}, err
		}
	}
	overview.CompletedActions, overview.TotalActions = countCompleted(subtasks)

	overview.CompletionRate = Percentage(overview.CompletedMarks, overview.TotalMarks)
	overview.ActionsCompletionRate = Percentage(overview.CompletedActions, overview.TotalActions)
	return overview, nil
}

// ComputeStreaks 按日期倒序扫描打卡记录。
// 当前连胜从最近一条记录往回数 completed=true，遇到 completed=false 停止；
// 最长连胜在 completed=false 处清零。没有记录的日期不会打断连胜。
func ComputeStreaks(marks []db.DailyMark) (Streak, error) {
	sorted, err := sortMarksDesc(marks)
	if err != nil {
		return Streak{}, err
	}

	var streak Streak
	counting := true
	running := 0
	for _, mark := range sorted {
		if !mark.Completed {
			counting = false
			running = 0
			continue
		}
		if counting {
			streak.Current++
		}
		running++
		streak.Longest = max(streak.Longest, running)
	}
	return streak, nil
}

// sortMarksDesc 校验日期与 (task, date) 唯一性后返回按日期倒序的副本
func sortMarksDesc(marks []db.DailyMark) ([]db.DailyMark, error) {
	seen := make(map[string]struct{}, len(marks))
	for _, mark := range marks {
		if _, err := parseField("mark.date", mark.Date); err != nil {
			return nil, err
		}
		key := mark.TaskID + "|" + mark.Date
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: task %s on %s", ErrDuplicateMark, mark.TaskID, mark.Date)
		}
		seen[key] = struct{}{}
	}

	sorted := slices.Clone(marks)
	// 同一天内未完成的记录排在前面，再按 task_id 排列
	slices.SortFunc(sorted, func(a, b db.DailyMark) int {
		if diff := cmp.Compare(b.Date, a.Date); diff != 0 {
			return diff
		}
		if a.Completed != b.Completed {
			if !a.Completed {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.TaskID, b.TaskID)
	})
	return sorted, nil
}

// TrendSeries 为 [start, end] 的每一天生成一个数据点，没有记录的日期同样保留
func TrendSeries(marks []db.DailyMark, start, end string) ([]TrendPoint, error) {
	days, err := DaysInRange(start, end)
	if err != nil {
		return nil, err
	}

	type bucket struct{ completed, total int }
	buckets := make(map[string]*bucket, len(days))
	for _, day := range days {
		buckets[day] = &bucket{}
	}

	for _, mark := range marks {
		if _, err := parseField("mark.date", mark.Date); err != nil {
			return nil, err
		}
		b, ok := buckets[mark.Date]
		if !ok {
			continue
		}
		b.total++
		if mark.Completed {
			b.completed++
		}
	}

	points := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		points = append(points, TrendPoint{
			Date:           day,
			Completed:      b.completed,
			Total:          b.total,
			CompletionRate: Percentage(b.completed, b.total),
		})
	}
	return points, nil
}

// TaskBreakdown 按任务名统计完成的打卡次数，零完成的任务不出现
func TaskBreakdown(marks []db.DailyMark, tasks []db.Task) ([]BreakdownItem, error) {
	names := make(map[string]string, len(tasks))
	for _, task := range tasks {
		names[task.ID] = task.Name
	}

	counts := make(map[string]int)
	for _, mark := range marks {
		if _, err := parseField("mark.date", mark.Date); err != nil {
			return nil, err
		}
		if !mark.Completed {
			continue
		}
		name, ok := names[mark.TaskID]
		if !ok {
			continue
		}
		counts[name]++
	}

	items := make([]BreakdownItem, 0, len(counts))
	for name, value := range counts {
		items = append(items, BreakdownItem{Name: name, Value: value})
	}
	slices.SortFunc(items, func(a, b BreakdownItem) int {
		if diff := cmp.Compare(b.Value, a.Value); diff != 0 {
			return diff
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return items, nil
}

// WeekdayHistogram 按打卡日期的星期几统计完成次数
func WeekdayHistogram(marks []db.DailyMark) ([]WeekdayBucket, error) {
	var counts [7]int
	for _, mark := range marks {
		day, err := Weekday(mark.Date)
		if err != nil {
			return nil, err
		}
		if mark.Completed {
			counts[day]++
		}
	}

	buckets := make([]WeekdayBucket, 0, len(counts))
	for day, value := range counts {
		buckets = append(buckets, WeekdayBucket{Day: day, Label: weekdayLabels[day], Value: value})
	}
	return buckets, nil
}

// TaskStreaks 对每个任务分别计算连胜，顺序与 tasks 一致
func TaskStreaks(marks []db.DailyMark, tasks []db.Task) ([]TaskStreak, error) {
	byTask := make(map[string][]db.DailyMark)
	for _, mark := range marks {
		byTask[mark.TaskID] = append(byTask[mark.TaskID], mark)
	}

	result := make([]TaskStreak, 0, len(tasks))
	for _, task := range tasks {
		taskMarks := byTask[task.ID]
		streak, err := ComputeStreaks(taskMarks)
		if err != nil {
			return nil, err
		}

		item := TaskStreak{
			TaskID:        task.ID,
			TaskName:      task.Name,
			CurrentStreak: streak.Current,
			LongestStreak: streak.Longest,
		}
		for _, mark := range taskMarks {
			if mark.Completed && mark.Date > item.LastCompletedDate {
				item.LastCompletedDate = mark.Date
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// ReportInput 是生成统计报表所需的完整快照
type ReportInput struct {
	Start        string
	End          string
	Tasks        []db.Task
	Marks        []db.DailyMark
	Subtasks     []db.DailySubtask
	MonthlyGoals []db.MonthlyGoal
	WeeklyGoals  []db.WeeklyGoal
}

// Report 对应统计页的全部数据
type Report struct {
	Start         string          `json:"start"`
	End           string          `json:"end"`
	Overview      Overview        `json:"overview"`
	Trend         []TrendPoint    `json:"trend"`
	TaskBreakdown []BreakdownItem `json:"task_breakdown"`
	Weekdays      []WeekdayBucket `json:"weekdays"`
	TaskStreaks   []TaskStreak    `json:"task_streaks"`
	Tasks         []db.Task       `json:"tasks"`
}

// BuildReport 依次运行各项统计，任一失败即返回
func BuildReport(in ReportInput) (Report, error) {
	report := Report{Start: in.Start, End: in.End, Tasks: nonNil(in.Tasks)}

	var err error
	if report.Overview, err = ComputeOverview(in.Marks, in.Subtasks, in.MonthlyGoals, in.WeeklyGoals, in.Tasks); err != nil {
		return Report{}, err
	}
	if report.Trend, err = TrendSeries(in.Marks, in.Start, in.End); err != nil {
		return Report{}, err
	}
	if report.TaskBreakdown, err = TaskBreakdown(in.Marks, in.Tasks); err != nil {
		return Report{}, err
	}
	if report.Weekdays, err = WeekdayHistogram(in.Marks); err != nil {
		return Report{}, err
	}
	if report.TaskStreaks, err = TaskStreaks(in.Marks, in.Tasks); err != nil {
		return Report{}, err
	}
	return report, nil
}
