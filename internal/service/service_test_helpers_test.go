package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deepwork/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:service-test-%d?mode=memory&cache=shared", testDBCounter.Add(1))
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func fixedClock(value string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse("2006-01-02 15:04", value)
		return t
	}
}

func mustCreateTask(t *testing.T, gdb *gorm.DB, userID, name string) *db.Task {
	t.Helper()
	task, err := NewTaskService(gdb).Create(userID, TaskInput{Name: name})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

func mustCreateMonthlyGoal(t *testing.T, gdb *gorm.DB, userID, taskID, title string) *db.MonthlyGoal {
	t.Helper()
	goal, err := NewMonthlyGoalService(gdb).Create(userID, MonthlyGoalInput{TaskID: taskID, GoalTitle: title, MonthYear: "2024-01"})
	if err != nil {
		t.Fatalf("failed to create monthly goal: %v", err)
	}
	return goal
}

func mustCreateWeeklyGoal(t *testing.T, gdb *gorm.DB, userID, monthlyGoalID, title, start, end string) db.WeeklyGoal {
	t.Helper()
	goals, err := NewWeeklyGoalService(gdb).Create(userID, []WeeklyGoalInput{{
		MonthlyGoalID: monthlyGoalID,
		GoalTitle:     title,
		WeekStartDate: start,
		WeekEndDate:   end,
	}})
	if err != nil {
		t.Fatalf("failed to create weekly goal: %v", err)
	}
	return goals[0]
}

func boolPtr(v bool) *bool {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func intPtr(v int) *int {
	return &v
}
