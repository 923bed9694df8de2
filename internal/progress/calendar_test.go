package progress

import (
	"testing"

	"github.com/deepwork/internal/db"
)

func TestCalendarBounds(t *testing.T) {
	start, end, err := CalendarBounds("2024-02")
	if err != nil {
		t.Fatalf("CalendarBounds returned error: %v", err)
	}
	if start != "2024-01-29" || end != "2024-03-03" {
		t.Fatalf("unexpected bounds: %s..%s", start, end)
	}

	if _, _, err := CalendarBounds("2024-13"); err == nil {
		t.Fatal("expected error for invalid month")
	}
}

func TestBuildCalendarMonth(t *testing.T) {
	marks := []db.DailyMark{
		{TaskID: "t1", Date: "2024-02-01", Completed: true, Notes: strPtr("good focus")},
		{TaskID: "t2", Date: "2024-02-01", Completed: false},
		{TaskID: "t1", Date: "2024-02-02", Completed: false, Notes: strPtr("")},
		{TaskID: "t1", Date: "2024-01-29", Completed: true},
		{TaskID: "t1", Date: "2024-04-01", Completed: true},
	}
	subtasks := []db.DailySubtask{
		{TaskID: "t1", Date: "2024-02-01", Completed: true},
		{TaskID: "t1", Date: "2024-02-01", Completed: false},
	}

	cal, err := BuildCalendarMonth("2024-02", marks, subtasks)
	if err != nil {
		t.Fatalf("BuildCalendarMonth returned error: %v", err)
	}

	if len(cal.Days)%7 != 0 || len(cal.Days) != 35 {
		t.Fatalf("expected 35 grid days, got %d", len(cal.Days))
	}
	if cal.Days[0].Date != "2024-01-29" || cal.Days[0].InMonth {
		t.Fatalf("unexpected first cell: %+v", cal.Days[0])
	}

	feb1 := cal.Days[3]
	if feb1.Date != "2024-02-01" || !feb1.InMonth || !feb1.IsCompleted {
		t.Fatalf("unexpected Feb 1 cell: %+v", feb1)
	}
	if feb1.MarksTotal != 2 || feb1.MarksCompleted != 1 || feb1.SubtasksCount != 2 || feb1.SubtasksCompleted != 1 {
		t.Fatalf("unexpected Feb 1 counts: %+v", feb1)
	}
	if len(feb1.Notes) != 1 || feb1.Notes[0] != "good focus" {
		t.Fatalf("unexpected notes: %+v", feb1.Notes)
	}
	if feb2 := cal.Days[4]; feb2.IsCompleted || len(feb2.Notes) != 0 {
		t.Fatalf("unexpected Feb 2 cell: %+v", feb2)
	}

	// 1 月 29 日完成但不在本月
	if cal.CompletedDays != 1 {
		t.Fatalf("expected 1 completed in-month day, got %d", cal.CompletedDays)
	}
}
