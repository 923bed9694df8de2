package progress

import (
	"errors"
	"testing"

	"github.com/deepwork/internal/db"
)

func mark(taskID, date string, completed bool) db.DailyMark {
	return db.DailyMark{TaskID: taskID, Date: date, Completed: completed}
}

func TestComputeStreaksScenario(t *testing.T) {
	marks := []db.DailyMark{
		mark("t1", "2024-01-05", true),
		mark("t1", "2024-01-04", true),
		mark("t1", "2024-01-03", false),
		mark("t1", "2024-01-02", true),
	}

	streak, err := ComputeStreaks(marks)
	if err != nil {
		t.Fatalf("ComputeStreaks returned error: %v", err)
	}
	if streak.Current != 2 || streak.Longest != 2 {
		t.Fatalf("unexpected streaks: current=%d longest=%d", streak.Current, streak.Longest)
	}
}

func TestComputeStreaksAllCompleted(t *testing.T) {
	for n := 0; n <= 6; n++ {
		marks := make([]db.DailyMark, 0, n)
		for i := 0; i < n; i++ {
			date, _ := AddDays("2024-03-01", i)
			marks = append(marks, mark("t1", date, true))
		}

		streak, err := ComputeStreaks(marks)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if streak.Current != n || streak.Longest != n {
			t.Fatalf("n=%d: expected current=longest=%d, got %+v", n, n, streak)
		}
	}
}

func TestComputeStreaksMostRecentFailureResetsCurrent(t *testing.T) {
	marks := []db.DailyMark{
		mark("t1", "2024-01-01", true),
		mark("t1", "2024-01-02", true),
		mark("t1", "2024-01-03", true),
		mark("t1", "2024-01-04", false),
	}

	streak, err := ComputeStreaks(marks)
	if err != nil {
		t.Fatalf("ComputeStreaks returned error: %v", err)
	}
	if streak.Current != 0 {
		t.Fatalf("expected current streak 0, got %d", streak.Current)
	}
	if streak.Longest != 3 {
		t.Fatalf("expected longest streak 3, got %d", streak.Longest)
	}
}

func TestComputeStreaksGapDoesNotBreak(t *testing.T) {
	// 01-02 与 01-04 没有记录，缺失不算失败
	marks := []db.DailyMark{
		mark("t1", "2024-01-05", true),
		mark("t1", "2024-01-03", true),
		mark("t1", "2024-01-01", true),
	}

	streak, err := ComputeStreaks(marks)
	if err != nil {
		t.Fatalf("ComputeStreaks returned error: %v", err)
	}
	if streak.Current != 3 || streak.Longest != 3 {
		t.Fatalf("gap should not break streak, got %+v", streak)
	}
}

func TestComputeStreaksSortsInput(t *testing.T) {
	marks := []db.DailyMark{
		mark("t1", "2024-01-02", true),
		mark("t1", "2024-01-05", true),
		mark("t1", "2024-01-03", false),
		mark("t1", "2024-01-04", true),
	}

	streak, err := ComputeStreaks(marks)
	if err != nil {
		t.Fatalf("ComputeStreaks returned error: %v", err)
	}
	if streak.Current != 2 || streak.Longest != 2 {
		t.Fatalf("unexpected streaks: %+v", streak)
	}
	if marks[0].Date != "2024-01-02" {
		t.Fatal("input slice must not be reordered")
	}
}

func TestComputeStreaksSameDayFailureWins(t *testing.T) {
	for _, ids := range [][2]string{{"a", "z"}, {"z", "a"}} {
		marks := []db.DailyMark{
			mark("t0", "2024-01-04", true),
			mark(ids[0], "2024-01-05", true),
			mark(ids[1], "2024-01-05", false),
		}

		streak, err := ComputeStreaks(marks)
		if err != nil {
			t.Fatalf("ComputeStreaks returned error: %v", err)
		}
		if streak.Current != 0 {
			t.Fatalf("ids %v: incomplete mark on the latest day should reset current streak, got %+v", ids, streak)
		}
		if streak.Longest != 2 {
			t.Fatalf("ids %v: expected longest streak 2, got %+v", ids, streak)
		}
	}
}

func TestComputeStreaksRejectsDuplicateMark(t *testing.T) {
	marks := []db.DailyMark{
		mark("t1", "2024-01-05", true),
		mark("t1", "2024-01-05", false),
	}

	if _, err := ComputeStreaks(marks); !errors.Is(err, ErrDuplicateMark) {
		t.Fatalf("expected ErrDuplicateMark, got %v", err)
	}

	// 不同任务同一天是合法的
	marks[1].TaskID = "t2"
	if _, err := ComputeStreaks(marks); err != nil {
		t.Fatalf("marks for different tasks should be accepted: %v", err)
	}
}

func TestComputeStreaksRejectsMalformedDate(t *testing.T) {
	_, err := ComputeStreaks([]db.DailyMark{mark("t1", "2024/01/05", true)})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "mark.date" {
		t.Fatalf("unexpected field: %s", verr.Field)
	}

	if _, err := ComputeStreaks([]db.DailyMark{mark("t1", "", true)}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty date, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 4, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{4, 4, 100},
	}

	for _, tt := range tests {
		if got := Percentage(tt.part, tt.total); got != tt.want {
			t.Fatalf("Percentage(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestComputeOverview(t *testing.T) {
	marks := []db.DailyMark{
		mark("t1", "2024-01-03", true),
		mark("t2", "2024-01-03", false),
		mark("t1", "2024-01-02", true),
	}
	subtasks := []db.DailySubtask{
		{TaskID: "t1", Date: "2024-01-03", Completed: true},
		{TaskID: "t1", Date: "2024-01-03", Completed: false},
		{TaskID: "t2", Date: "2024-01-02", Completed: false},
	}
	monthly := []db.MonthlyGoal{{Status: db.GoalStatusActive}, {Status: db.GoalStatusActive}}
	weekly := []db.WeeklyGoal{{GoalTitle: "w1"}}
	tasks := []db.Task{{Name: "Write"}, {Name: "Read"}}

	overview, err := ComputeOverview(marks, subtasks, monthly, weekly, tasks)
	if err != nil {
		t.Fatalf("ComputeOverview returned error: %v", err)
	}

	if overview.TotalMarks != 3 || overview.CompletedMarks != 2 || overview.CompletionRate != 67 {
		t.Fatalf("unexpected mark stats: %+v", overview)
	}
	if overview.TotalActions != 3 || overview.CompletedActions != 1 || overview.ActionsCompletionRate != 33 {
		t.Fatalf("unexpected action stats: %+v", overview)
	}
	if overview.ActiveTasks != 2 || overview.ActiveMonthlyGoals != 2 || overview.ActiveWeeklyGoals != 1 {
		t.Fatalf("unexpected counts: %+v", overview)
	}
	// 2024-01-03 上 t1(true) 排在 t2(false) 之前，t2 的失败把两天隔开
	if overview.CurrentStreak != 1 || overview.LongestStreak != 1 {
		t.Fatalf("unexpected streaks: current=%d longest=%d", overview.CurrentStreak, overview.LongestStreak)
	}
}

func TestComputeOverviewEmpty(t *testing.T) {
	overview, err := ComputeOverview(nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("ComputeOverview returned error: %v", err)
	}
	if overview != (Overview{}) {
		t.Fatalf("expected zero overview, got %+v", overview)
	}
}

func TestTrendSeriesCoversEveryDay(t *testing.T) {
	points, err := TrendSeries(nil, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("TrendSeries returned error: %v", err)
	}
	if len(points) != 31 {
		t.Fatalf("expected 31 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Total != 0 || p.Completed != 0 || p.CompletionRate != 0 {
			t.Fatalf("expected empty point, got %+v", p)
		}
	}
	if points[0].Date != "2024-01-01" || points[30].Date != "2024-01-31" {
		t.Fatalf("unexpected bounds: %s..%s", points[0].Date, points[30].Date)
	}
}

func TestTrendSeriesBuckets(t *testing.T) {
	marks := []db.DailyMark{
		mark("t1", "2024-02-28", true),
		mark("t2", "2024-02-28", false),
		mark("t3", "2024-02-28", true),
		mark("t1", "2024-02-29", true),
		mark("t1", "2024-03-05", true),
	}

	points, err := TrendSeries(marks, "2024-02-27", "2024-03-01")
	if err != nil {
		t.Fatalf("TrendSeries returned error: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points across the leap day, got %d", len(points))
	}
	if p := points[1]; p.Date != "2024-02-28" || p.Total != 3 || p.Completed != 2 || p.CompletionRate != 67 {
		t.Fatalf("unexpected point: %+v", p)
	}
	if p := points[2]; p.Date != "2024-02-29" || p.CompletionRate != 100 {
		t.Fatalf("unexpected point: %+v", p)
	}
}

func TestTrendSeriesInvalidRange(t *testing.T) {
	if _, err := TrendSeries(nil, "2024-01-10", "2024-01-01"); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestTaskBreakdown(t *testing.T) {
	tasks := []db.Task{
		{Record: db.Record{ID: "t1"}, Name: "Write"},
		{Record: db.Record{ID: "t2"}, Name: "Read"},
		{Record: db.Record{ID: "t3"}, Name: "Idle"},
	}
	marks := []db.DailyMark{
		mark("t1", "2024-01-01", true),
		mark("t1", "2024-01-02", true),
		mark("t2", "2024-01-01", true),
		mark("t3", "2024-01-01", false),
		mark("gone", "2024-01-01", true),
	}

	items, err := TaskBreakdown(marks, tasks)
	if err != nil {
		t.Fatalf("TaskBreakdown returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[0] != (BreakdownItem{Name: "Write", Value: 2}) || items[1] != (BreakdownItem{Name: "Read", Value: 1}) {
		t.Fatalf("unexpected breakdown: %+v", items)
	}
}

func TestWeekdayHistogram(t *testing.T) {
	marks := []db.DailyMark{
		mark("t1", "2024-01-07", true),  // Sunday
		mark("t2", "2024-01-07", true),  // Sunday
		mark("t1", "2024-01-08", true),  // Monday
		mark("t1", "2024-01-13", true),  // Saturday
		mark("t1", "2024-01-09", false), // Tuesday, not counted
	}

	buckets, err := WeekdayHistogram(marks)
	if err != nil {
		t.Fatalf("WeekdayHistogram returned error: %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}

	want := []int{2, 1, 0, 0, 0, 0, 1}
	for i, b := range buckets {
		if b.Day != i || b.Value != want[i] {
			t.Fatalf("bucket %d: got %+v, want value %d", i, b, want[i])
		}
	}
	if buckets[0].Label != "Sun" || buckets[6].Label != "Sat" {
		t.Fatalf("unexpected labels: %s %s", buckets[0].Label, buckets[6].Label)
	}
}

func TestTaskStreaks(t *testing.T) {
	tasks := []db.Task{
		{Record: db.Record{ID: "t1"}, Name: "Write"},
		{Record: db.Record{ID: "t2"}, Name: "Read"},
	}
	marks := []db.DailyMark{
		mark("t1", "2024-01-01", true),
		mark("t1", "2024-01-02", true),
		mark("t2", "2024-01-01", true),
		mark("t2", "2024-01-02", false),
	}

	streaks, err := TaskStreaks(marks, tasks)
	if err != nil {
		t.Fatalf("TaskStreaks returned error: %v", err)
	}
	if len(streaks) != 2 {
		t.Fatalf("expected 2 task streaks, got %d", len(streaks))
	}
	if s := streaks[0]; s.CurrentStreak != 2 || s.LongestStreak != 2 || s.LastCompletedDate != "2024-01-02" {
		t.Fatalf("unexpected streak for Write: %+v", s)
	}
	if s := streaks[1]; s.CurrentStreak != 0 || s.LongestStreak != 1 || s.LastCompletedDate != "2024-01-01" {
		t.Fatalf("unexpected streak for Read: %+v", s)
	}
}

func TestBuildReport(t *testing.T) {
	tasks := []db.Task{{Record: db.Record{ID: "t1"}, Name: "Write", IsActive: true}}
	report, err := BuildReport(ReportInput{
		Start: "2024-01-01",
		End:   "2024-01-07",
		Tasks: tasks,
		Marks: []db.DailyMark{mark("t1", "2024-01-02", true)},
	})
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}
	if len(report.Trend) != 7 || len(report.Weekdays) != 7 || len(report.TaskStreaks) != 1 {
		t.Fatalf("unexpected report shape: %+v", report)
	}
	if report.Overview.CompletionRate != 100 {
		t.Fatalf("unexpected completion rate: %d", report.Overview.CompletionRate)
	}

	if _, err := BuildReport(ReportInput{Start: "2024-01-07", End: "2024-01-01"}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
