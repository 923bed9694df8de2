package service

import (
	"context"
	"fmt"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/progress"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ProgressService 读取快照并交给 progress 包计算，
// 各集合的查询并发执行，任一失败即取消其余查询
type ProgressService struct {
	db *gorm.DB
}

// NewProgressService 构造 ProgressService
func NewProgressService(gdb *gorm.DB) *ProgressService {
	return &ProgressService{db: gdb}
}

// Today 返回某天的目标层级视图
func (s *ProgressService) Today(ctx context.Context, userID, date string) (progress.DailyView, error) {
	if _, err := progress.ParseDate(date); err != nil {
		return progress.DailyView{}, err
	}

	var (
		tasks    []db.Task
		monthly  []db.MonthlyGoal
		weekly   []db.WeeklyGoal
		subtasks []db.DailySubtask
	)

	g, ctx := errgroup.WithContext(ctx)
	gdb := s.db.WithContext(ctx)

	g.Go(func() (err error) {
		tasks, err = NewTaskService(gdb).List(userID, true)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = NewMonthlyGoalService(gdb).List(userID, MonthlyGoalFilter{Status: db.GoalStatusActive})
		return err
	})
	g.Go(func() error {
		active := gdb.Model(&db.MonthlyGoal{}).Select("id").
			Where("user_id = ? AND status = ?", userID, db.GoalStatusActive)
		if err := gdb.Where("user_id = ? AND week_start_date <= ? AND week_end_date >= ?", userID, date, date).
			Where("monthly_goal_id IN (?)", active).
			Order("week_start_date ASC").Order("created_at ASC").
			Find(&weekly).Error; err != nil {
			return fmt.Errorf("list weekly goals: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		subtasks, err = NewSubtaskService(gdb).List(userID, SubtaskFilter{Date: date})
		return err
	})

	if err := g.Wait(); err != nil {
		return progress.DailyView{}, err
	}
	return progress.BuildDailyView(tasks, monthly, weekly, subtasks, date)
}

// Analytics 计算 [start, end] 内的统计报表
func (s *ProgressService) Analytics(ctx context.Context, userID, start, end string) (progress.Report, error) {
	if _, err := progress.DaysInRange(start, end); err != nil {
		return progress.Report{}, err
	}

	in := progress.ReportInput{Start: start, End: end}

	g, ctx := errgroup.WithContext(ctx)
	gdb := s.db.WithContext(ctx)

	g.Go(func() (err error) {
		in.Tasks, err = NewTaskService(gdb).List(userID, true)
		return err
	})
	g.Go(func() (err error) {
		in.Marks, err = NewMarkService(gdb).List(userID, MarkFilter{StartDate: start, EndDate: end})
		return err
	})
	g.Go(func() error {
		if err := gdb.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
			Order("date ASC").Find(&in.Subtasks).Error; err != nil {
			return fmt.Errorf("list subtasks: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		in.MonthlyGoals, err = NewMonthlyGoalService(gdb).List(userID, MonthlyGoalFilter{Status: db.GoalStatusActive})
		return err
	})
	g.Go(func() error {
		active := gdb.Model(&db.MonthlyGoal{}).Select("id").
			Where("user_id = ? AND status = ?", userID, db.GoalStatusActive)
		if err := gdb.Where("user_id = ? AND monthly_goal_id IN (?)", userID, active).
			Find(&in.WeeklyGoals).Error; err != nil {
			return fmt.Errorf("list weekly goals: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return progress.Report{}, err
	}
	return progress.BuildReport(in)
}

// Calendar 返回某月的日历网格
func (s *ProgressService) Calendar(ctx context.Context, userID, month string) (progress.CalendarMonth, error) {
	start, end, err := progress.CalendarBounds(month)
	if err != nil {
		return progress.CalendarMonth{}, err
	}

	var (
		marks    []db.DailyMark
		subtasks []db.DailySubtask
	)

	g, ctx := errgroup.WithContext(ctx)
	gdb := s.db.WithContext(ctx)

	g.Go(func() (err error) {
		marks, err = NewMarkService(gdb).List(userID, MarkFilter{StartDate: start, EndDate: end})
		return err
	})
	g.Go(func() error {
		if err := gdb.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
			Find(&subtasks).Error; err != nil {
			return fmt.Errorf("list subtasks: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return progress.CalendarMonth{}, err
	}
	return progress.BuildCalendarMonth(month, marks, subtasks)
}
