package handler

import (
	"time"

	"github.com/deepwork/internal/progress"
	"github.com/deepwork/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	tasks        *service.TaskService
	monthlyGoals *service.MonthlyGoalService
	weeklyGoals  *service.WeeklyGoalService
	subtasks     *service.SubtaskService
	marks        *service.MarkService
	progress     *service.ProgressService
	now          func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB) *API {
	return &API{
		db:           db,
		tasks:        service.NewTaskService(db),
		monthlyGoals: service.NewMonthlyGoalService(db),
		weeklyGoals:  service.NewWeeklyGoalService(db),
		subtasks:     service.NewSubtaskService(db),
		marks:        service.NewMarkService(db),
		progress:     service.NewProgressService(db),
		now:          time.Now,
	}
}

// WithClock 固定“今天”，同时作用于依赖时间的 service
func (a *API) WithClock(now func() time.Time) *API {
	if now == nil {
		return a
	}
	a.now = now
	a.monthlyGoals.WithClock(now)
	a.weeklyGoals.WithClock(now)
	a.subtasks.WithClock(now)
	return a
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

func (a *API) today() string {
	return progress.Today(a.now())
}
