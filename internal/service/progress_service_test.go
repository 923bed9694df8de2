package service

import (
	"context"
	"errors"
	"testing"

	"github.com/deepwork/internal/progress"
)

func TestProgressServiceToday(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	task := mustCreateTask(t, gdb, "u1", "写作")
	archived := mustCreateTask(t, gdb, "u1", "旧任务")
	goal := mustCreateMonthlyGoal(t, gdb, "u1", task.ID, "完成初稿")
	mustCreateWeeklyGoal(t, gdb, "u1", goal.ID, "第一章", "2024-01-01", "2024-01-07")
	week := mustCreateWeeklyGoal(t, gdb, "u1", goal.ID, "第二章", "2024-01-08", "2024-01-14")
	if _, err := NewTaskService(gdb).Archive("u1", archived.ID); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}

	subtasks := NewSubtaskService(gdb)
	for _, title := range []string{"写 500 字", "改稿", "配图"} {
		if _, err := subtasks.Create("u1", SubtaskInput{TaskID: task.ID, WeeklyGoalID: &week.ID, Date: "2024-01-10", SubtaskTitle: title}); err != nil {
			t.Fatalf("failed to create subtask: %v", err)
		}
	}
	list, err := subtasks.List("u1", SubtaskFilter{Date: "2024-01-10"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	for _, subtask := range list[:2] {
		if _, err := subtasks.Update("u1", subtask.ID, SubtaskPatch{Completed: boolPtr(true)}); err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
	}

	svc := NewProgressService(gdb)
	dayView, err := svc.Today(context.Background(), "u1", "2024-01-10")
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}

	if len(dayView.Tasks) != 1 {
		t.Fatalf("expected only the active task, got %d", len(dayView.Tasks))
	}
	monthly := dayView.Tasks[0].MonthlyGoals
	if len(monthly) != 1 || len(monthly[0].WeeklyGoals) != 1 {
		t.Fatalf("unexpected hierarchy: %+v", monthly)
	}
	node := monthly[0].WeeklyGoals[0]
	if node.Goal.ID != week.ID || node.Completed != 2 || node.Total != 3 {
		t.Fatalf("unexpected weekly node: %+v", node)
	}
	if dayView.Summary.CompletionRate != 67 {
		t.Fatalf("unexpected completion rate: %d", dayView.Summary.CompletionRate)
	}

	other, err := svc.Today(context.Background(), "u2", "2024-01-10")
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if len(other.Tasks) != 0 {
		t.Fatal("another user must not see u1's tasks")
	}

	var verr *progress.ValidationError
	if _, err := svc.Today(context.Background(), "u1", "tomorrow"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestProgressServiceTodayKeepsSubtasksOfFinishedGoals(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	task := mustCreateTask(t, gdb, "u1", "写作")
	goal := mustCreateMonthlyGoal(t, gdb, "u1", task.ID, "完成初稿")
	week := mustCreateWeeklyGoal(t, gdb, "u1", goal.ID, "第二章", "2024-01-08", "2024-01-14")
	if _, err := NewSubtaskService(gdb).Create("u1", SubtaskInput{TaskID: task.ID, WeeklyGoalID: &week.ID, Date: "2024-01-10", SubtaskTitle: "收尾"}); err != nil {
		t.Fatalf("failed to create subtask: %v", err)
	}
	completed := "completed"
	if _, err := NewMonthlyGoalService(gdb).Update("u1", goal.ID, MonthlyGoalPatch{Status: &completed}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	dayView, err := NewProgressService(gdb).Today(context.Background(), "u1", "2024-01-10")
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if len(dayView.Tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(dayView.Tasks))
	}
	node := dayView.Tasks[0]
	if len(node.MonthlyGoals) != 0 || len(node.OtherSubtasks) != 1 || node.OtherSubtasks[0].SubtaskTitle != "收尾" {
		t.Fatalf("subtask of the completed goal should stay visible: %+v", node)
	}
	if dayView.Summary.TotalActions != 1 || dayView.Summary.CompletedActions != 0 {
		t.Fatalf("unexpected summary: %+v", dayView.Summary)
	}
}

func TestProgressServiceAnalytics(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	task := mustCreateTask(t, gdb, "u1", "写作")
	marks := NewMarkService(gdb)
	days := map[string]bool{
		"2024-01-02": true,
		"2024-01-03": false,
		"2024-01-04": true,
		"2024-01-05": true,
		"2023-12-31": true,
	}
	for date, completed := range days {
		if _, _, err := marks.Upsert("u1", MarkInput{TaskID: task.ID, Date: date, Completed: boolPtr(completed)}); err != nil {
			t.Fatalf("Upsert returned error: %v", err)
		}
	}

	report, err := NewProgressService(gdb).Analytics(context.Background(), "u1", "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("Analytics returned error: %v", err)
	}

	if report.Overview.TotalMarks != 4 || report.Overview.CompletedMarks != 3 || report.Overview.CompletionRate != 75 {
		t.Fatalf("unexpected overview: %+v", report.Overview)
	}
	if report.Overview.CurrentStreak != 2 || report.Overview.LongestStreak != 2 {
		t.Fatalf("unexpected streaks: %+v", report.Overview)
	}
	if len(report.Trend) != 7 {
		t.Fatalf("expected 7 trend points, got %d", len(report.Trend))
	}
	if len(report.TaskBreakdown) != 1 || report.TaskBreakdown[0].Value != 3 {
		t.Fatalf("unexpected breakdown: %+v", report.TaskBreakdown)
	}

	if _, err := NewProgressService(gdb).Analytics(context.Background(), "u1", "2024-01-07", "2024-01-01"); !errors.Is(err, progress.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestProgressServiceCalendar(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	task := mustCreateTask(t, gdb, "u1", "写作")
	marks := NewMarkService(gdb)
	for _, date := range []string{"2024-02-01", "2024-02-14", "2024-03-02"} {
		if _, _, err := marks.Upsert("u1", MarkInput{TaskID: task.ID, Date: date, Completed: boolPtr(true)}); err != nil {
			t.Fatalf("Upsert returned error: %v", err)
		}
	}

	cal, err := NewProgressService(gdb).Calendar(context.Background(), "u1", "2024-02")
	if err != nil {
		t.Fatalf("Calendar returned error: %v", err)
	}
	if len(cal.Days) != 35 || cal.CompletedDays != 2 {
		t.Fatalf("unexpected calendar: days=%d completed=%d", len(cal.Days), cal.CompletedDays)
	}
	if last := cal.Days[len(cal.Days)-1]; last.Date != "2024-03-03" {
		t.Fatalf("unexpected last grid day: %s", last.Date)
	}
}
