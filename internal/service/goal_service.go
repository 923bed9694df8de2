package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/progress"
	"gorm.io/gorm"
)

var (
	// ErrMonthlyGoalNotFound 在月度目标不存在或不属于当前用户时返回
	ErrMonthlyGoalNotFound = errors.New("monthly goal not found")
	// ErrWeeklyGoalNotFound 在周目标不存在或不属于当前用户时返回
	ErrWeeklyGoalNotFound = errors.New("weekly goal not found")
	// ErrGoalInvalid 目标字段校验失败
	ErrGoalInvalid = errors.New("invalid goal")
)

// DefaultPlanWeeks 生成周计划时默认切分的周数
const DefaultPlanWeeks = 4

// MonthlyGoalService 负责月度目标，删除时级联周目标与行动
type MonthlyGoalService struct {
	db  *gorm.DB
	now func() time.Time
}

// MonthlyGoalFilter 列表过滤条件
type MonthlyGoalFilter struct {
	TaskID string
	Status string
}

// MonthlyGoalInput 创建月度目标的输入，MonthYear 为空时取当前月份
type MonthlyGoalInput struct {
	TaskID      string
	GoalTitle   string
	Description *string
	TargetDate  *string
	MonthYear   string
}

// MonthlyGoalPatch 字段级更新，nil 表示不修改
type MonthlyGoalPatch struct {
	GoalTitle          *string
	Description        *string
	TargetDate         *string
	ProgressPercentage *int
	Status             *string
}

// NewMonthlyGoalService 构造 MonthlyGoalService
func NewMonthlyGoalService(gdb *gorm.DB) *MonthlyGoalService {
	return &MonthlyGoalService{db: gdb, now: time.Now}
}

// WithClock 允许测试固定“当前月份”
func (s *MonthlyGoalService) WithClock(now func() time.Time) *MonthlyGoalService {
	if now != nil {
		s.now = now
	}
	return s
}

// List 按创建顺序返回月度目标
func (s *MonthlyGoalService) List(userID string, filter MonthlyGoalFilter) ([]db.MonthlyGoal, error) {
	var goals []db.MonthlyGoal

	query := s.db.Where("user_id = ?", userID)
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list monthly goals: %w", err)
	}
	return goals, nil
}

// Get 根据 ID 获取月度目标
func (s *MonthlyGoalService) Get(userID, id string) (*db.MonthlyGoal, error) {
	return findOwned[db.MonthlyGoal](s.db, userID, id, ErrMonthlyGoalNotFound, "monthly goal")
}

// Create 新建月度目标，状态为 active、进度为 0
func (s *MonthlyGoalService) Create(userID string, input MonthlyGoalInput) (*db.MonthlyGoal, error) {
	title := strings.TrimSpace(input.GoalTitle)
	if title == "" {
		return nil, fmt.Errorf("%w: goal_title is required", ErrGoalInvalid)
	}

	targetDate, err := normalizeTargetDate(input.TargetDate)
	if err != nil {
		return nil, err
	}

	monthYear := strings.TrimSpace(input.MonthYear)
	if monthYear == "" {
		monthYear = progress.MonthYear(s.now())
	} else if _, err := time.Parse(progress.MonthLayout, monthYear); err != nil {
		return nil, fmt.Errorf("%w: month_year must be YYYY-MM", ErrGoalInvalid)
	}

	goal := db.MonthlyGoal{
		UserID:      userID,
		TaskID:      input.TaskID,
		GoalTitle:   title,
		Description: trimOptional(input.Description),
		TargetDate:  targetDate,
		MonthYear:   monthYear,
		Status:      db.GoalStatusActive,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[db.Task](tx, userID, input.TaskID, ErrTaskNotFound, "task"); err != nil {
			return err
		}
		if err := tx.Create(&goal).Error; err != nil {
			return fmt.Errorf("create monthly goal: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &goal, nil
}

// Update 按字段更新月度目标
func (s *MonthlyGoalService) Update(userID, id string, patch MonthlyGoalPatch) (*db.MonthlyGoal, error) {
	goal, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.GoalTitle != nil {
		title := strings.TrimSpace(*patch.GoalTitle)
		if title == "" {
			return nil, fmt.Errorf("%w: goal_title cannot be empty", ErrGoalInvalid)
		}
		updates["goal_title"] = title
	}
	if patch.Description != nil {
		updates["description"] = trimOptional(patch.Description)
	}
	if patch.TargetDate != nil {
		targetDate, err := normalizeTargetDate(patch.TargetDate)
		if err != nil {
			return nil, err
		}
		updates["target_date"] = targetDate
	}
	if patch.ProgressPercentage != nil {
		if *patch.ProgressPercentage < 0 || *patch.ProgressPercentage > 100 {
			return nil, fmt.Errorf("%w: progress_percentage must be between 0 and 100", ErrGoalInvalid)
		}
		updates["progress_percentage"] = *patch.ProgressPercentage
	}
	if patch.Status != nil {
		status, err := normalizeGoalStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
	}

	if len(updates) == 0 {
		return goal, nil
	}

	if err := s.db.Model(goal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update monthly goal: %w", err)
	}
	return s.Get(userID, id)
}

// Delete 删除月度目标及其周目标、行动，并重算受影响日期的打卡
func (s *MonthlyGoalService) Delete(userID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := findOwned[db.MonthlyGoal](tx, userID, id, ErrMonthlyGoalNotFound, "monthly goal")
		if err != nil {
			return err
		}

		var weekIDs []string
		if err := tx.Model(&db.WeeklyGoal{}).
			Where("user_id = ? AND monthly_goal_id = ?", userID, goal.ID).
			Pluck("id", &weekIDs).Error; err != nil {
			return fmt.Errorf("list weekly goal ids: %w", err)
		}

		if err := deleteSubtasksOfWeeks(tx, userID, weekIDs); err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND monthly_goal_id = ?", userID, goal.ID).
			Delete(&db.WeeklyGoal{}).Error; err != nil {
			return fmt.Errorf("delete weekly goals: %w", err)
		}
		if err := tx.Delete(goal).Error; err != nil {
			return fmt.Errorf("delete monthly goal: %w", err)
		}
		return nil
	})
}

// WeeklyGoalService 负责周目标与周计划生成
type WeeklyGoalService struct {
	db  *gorm.DB
	now func() time.Time
}

// WeeklyGoalFilter 列表过滤条件
type WeeklyGoalFilter struct {
	MonthlyGoalID string
	TaskID        string
}

// WeeklyGoalInput 创建周目标的输入，TaskID 为空时沿用月度目标的任务
type WeeklyGoalInput struct {
	MonthlyGoalID string
	TaskID        string
	GoalTitle     string
	Description   *string
	WeekStartDate string
	WeekEndDate   string
}

// WeeklyGoalPatch 字段级更新，nil 表示不修改
type WeeklyGoalPatch struct {
	GoalTitle   *string
	Description *string
	Completed   *bool
}

// PlanOptions 控制周计划的起始日期与周数
type PlanOptions struct {
	StartDate string
	Weeks     int
}

// NewWeeklyGoalService 构造 WeeklyGoalService
func NewWeeklyGoalService(gdb *gorm.DB) *WeeklyGoalService {
	return &WeeklyGoalService{db: gdb, now: time.Now}
}

// WithClock 允许测试固定计划默认的起始日期
func (s *WeeklyGoalService) WithClock(now func() time.Time) *WeeklyGoalService {
	if now != nil {
		s.now = now
	}
	return s
}

// List 按周起始日期返回周目标
func (s *WeeklyGoalService) List(userID string, filter WeeklyGoalFilter) ([]db.WeeklyGoal, error) {
	var goals []db.WeeklyGoal

	query := s.db.Where("user_id = ?", userID)
	if filter.MonthlyGoalID != "" {
		query = query.Where("monthly_goal_id = ?", filter.MonthlyGoalID)
	}
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}

	if err := query.Order("week_start_date ASC").Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list weekly goals: %w", err)
	}
	return goals, nil
}

// Get 根据 ID 获取周目标
func (s *WeeklyGoalService) Get(userID, id string) (*db.WeeklyGoal, error) {
	return findOwned[db.WeeklyGoal](s.db, userID, id, ErrWeeklyGoalNotFound, "weekly goal")
}

// Create 批量创建周目标，任意一条校验失败则全部不写入
func (s *WeeklyGoalService) Create(userID string, inputs []WeeklyGoalInput) ([]db.WeeklyGoal, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one weekly goal is required", ErrGoalInvalid)
	}

	for i, input := range inputs {
		if strings.TrimSpace(input.MonthlyGoalID) == "" || strings.TrimSpace(input.GoalTitle) == "" {
			return nil, fmt.Errorf("%w: goal %d: monthly_goal_id and goal_title are required", ErrGoalInvalid, i)
		}
		if err := validateWeekWindow(input.WeekStartDate, input.WeekEndDate); err != nil {
			return nil, fmt.Errorf("goal %d: %w", i, err)
		}
	}

	goals := make([]db.WeeklyGoal, 0, len(inputs))
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		parents := make(map[string]*db.MonthlyGoal)
		for i, input := range inputs {
			parent, ok := parents[input.MonthlyGoalID]
			if !ok {
				found, err := findOwned[db.MonthlyGoal](tx, userID, input.MonthlyGoalID, ErrMonthlyGoalNotFound, "monthly goal")
				if err != nil {
					return err
				}
				parent = found
				parents[input.MonthlyGoalID] = found
			}

			taskID := strings.TrimSpace(input.TaskID)
			if taskID == "" {
				taskID = parent.TaskID
			}
			if taskID != parent.TaskID {
				return fmt.Errorf("%w: goal %d: task_id does not match monthly goal", ErrGoalInvalid, i)
			}

			goals = append(goals, db.WeeklyGoal{
				UserID:        userID,
				MonthlyGoalID: parent.ID,
				TaskID:        taskID,
				GoalTitle:     strings.TrimSpace(input.GoalTitle),
				Description:   trimOptional(input.Description),
				WeekStartDate: input.WeekStartDate,
				WeekEndDate:   input.WeekEndDate,
			})
		}

		if err := tx.Create(&goals).Error; err != nil {
			return fmt.Errorf("create weekly goals: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return goals, nil
}

// Update 按字段更新周目标
func (s *WeeklyGoalService) Update(userID, id string, patch WeeklyGoalPatch) (*db.WeeklyGoal, error) {
	goal, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.GoalTitle != nil {
		title := strings.TrimSpace(*patch.GoalTitle)
		if title == "" {
			return nil, fmt.Errorf("%w: goal_title cannot be empty", ErrGoalInvalid)
		}
		updates["goal_title"] = title
	}
	if patch.Description != nil {
		updates["description"] = trimOptional(patch.Description)
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}

	if len(updates) == 0 {
		return goal, nil
	}

	if err := s.db.Model(goal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update weekly goal: %w", err)
	}
	return s.Get(userID, id)
}

// Delete 删除周目标及其行动
func (s *WeeklyGoalService) Delete(userID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := findOwned[db.WeeklyGoal](tx, userID, id, ErrWeeklyGoalNotFound, "weekly goal")
		if err != nil {
			return err
		}
		if err := deleteSubtasksOfWeeks(tx, userID, []string{goal.ID}); err != nil {
			return err
		}
		if err := tx.Delete(goal).Error; err != nil {
			return fmt.Errorf("delete weekly goal: %w", err)
		}
		return nil
	})
}

// PreviewPlan 为月度目标生成空白周计划：从 StartDate（默认今天）到
// 目标截止日（默认起始日后 30 天），每周一条草稿
func (s *WeeklyGoalService) PreviewPlan(userID, monthlyGoalID string, opts PlanOptions) (*progress.WeeklyPlan, error) {
	goal, err := findOwned[db.MonthlyGoal](s.db, userID, monthlyGoalID, ErrMonthlyGoalNotFound, "monthly goal")
	if err != nil {
		return nil, err
	}

	start := strings.TrimSpace(opts.StartDate)
	if start == "" {
		start = progress.Today(s.now())
	}
	if _, err := progress.ParseDate(start); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoalInvalid, err)
	}

	end := ""
	if goal.TargetDate != nil {
		end = *goal.TargetDate
	}
	if end == "" {
		if end, err = progress.AddDays(start, 30); err != nil {
			return nil, err
		}
	}

	weeks := opts.Weeks
	if weeks == 0 {
		weeks = DefaultPlanWeeks
	}

	windows, err := progress.PlanWeekWindows(start, end, weeks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoalInvalid, err)
	}

	drafts := make([]progress.GoalDraft, 0, len(windows))
	for _, window := range windows {
		drafts = append(drafts, progress.GoalDraft{WeekIndex: window.Index})
	}
	return &progress.WeeklyPlan{Windows: windows, Drafts: drafts}, nil
}

// SavePlan 校验周计划并一次性写入全部周目标
func (s *WeeklyGoalService) SavePlan(userID, monthlyGoalID string, plan progress.WeeklyPlan) ([]db.WeeklyGoal, error) {
	planned, err := plan.Goals()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoalInvalid, err)
	}

	inputs := make([]WeeklyGoalInput, 0, len(planned))
	for _, goal := range planned {
		description := goal.Description
		inputs = append(inputs, WeeklyGoalInput{
			MonthlyGoalID: monthlyGoalID,
			GoalTitle:     goal.GoalTitle,
			Description:   &description,
			WeekStartDate: goal.WeekStartDate,
			WeekEndDate:   goal.WeekEndDate,
		})
	}
	return s.Create(userID, inputs)
}

func deleteSubtasksOfWeeks(tx *gorm.DB, userID string, weekIDs []string) error {
	if len(weekIDs) == 0 {
		return nil
	}

	var subtasks []db.DailySubtask
	if err := tx.Where("user_id = ? AND weekly_goal_id IN ?", userID, weekIDs).Find(&subtasks).Error; err != nil {
		return fmt.Errorf("list subtasks of weekly goals: %w", err)
	}
	if len(subtasks) == 0 {
		return nil
	}

	if err := tx.Where("user_id = ? AND weekly_goal_id IN ?", userID, weekIDs).
		Delete(&db.DailySubtask{}).Error; err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	return resyncExistingMarks(tx, userID, subtasks)
}

func validateWeekWindow(start, end string) error {
	from, err := progress.ParseDate(start)
	if err != nil {
		return fmt.Errorf("%w: week_start_date: %v", ErrGoalInvalid, err)
	}
	to, err := progress.ParseDate(end)
	if err != nil {
		return fmt.Errorf("%w: week_end_date: %v", ErrGoalInvalid, err)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: week_end_date is before week_start_date", ErrGoalInvalid)
	}
	return nil
}

func normalizeTargetDate(value *string) (*string, error) {
	trimmed := trimOptional(value)
	if trimmed == nil {
		return nil, nil
	}
	if _, err := progress.ParseDate(*trimmed); err != nil {
		return nil, fmt.Errorf("%w: target_date: %v", ErrGoalInvalid, err)
	}
	return trimmed, nil
}

func normalizeGoalStatus(status string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(status)) {
	case db.GoalStatusActive:
		return db.GoalStatusActive, nil
	case db.GoalStatusCompleted:
		return db.GoalStatusCompleted, nil
	case db.GoalStatusCancelled:
		return db.GoalStatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: unsupported status %s", ErrGoalInvalid, status)
	}
}
