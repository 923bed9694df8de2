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
	// ErrSubtaskNotFound 在行动不存在或不属于当前用户时返回
	ErrSubtaskNotFound = errors.New("subtask not found")
	// ErrSubtaskInvalid 行动字段校验失败
	ErrSubtaskInvalid = errors.New("invalid subtask")
)

// SubtaskService 负责每日行动的读写，完成状态变化时同步当天打卡
type SubtaskService struct {
	db  *gorm.DB
	now func() time.Time
}

// SubtaskFilter 列表过滤条件，空值表示不限制
type SubtaskFilter struct {
	Date         string
	TaskID       string
	WeeklyGoalID string
}

// SubtaskInput 创建行动时的输入
type SubtaskInput struct {
	TaskID            string
	WeeklyGoalID      *string
	Date              string
	SubtaskTitle      string
	Description       *string
	EstimatedDuration *int
}

// SubtaskPatch 字段级更新，nil 表示不修改
type SubtaskPatch struct {
	SubtaskTitle      *string
	Description       *string
	EstimatedDuration *int
	Completed         *bool
}

// NewSubtaskService 构造 SubtaskService
func NewSubtaskService(gdb *gorm.DB) *SubtaskService {
	return &SubtaskService{db: gdb, now: time.Now}
}

// WithClock 允许测试固定 completed_at 的时间
func (s *SubtaskService) WithClock(now func() time.Time) *SubtaskService {
	if now != nil {
		s.now = now
	}
	return s
}

// List 按日期倒序、创建时间正序返回行动
func (s *SubtaskService) List(userID string, filter SubtaskFilter) ([]db.DailySubtask, error) {
	var subtasks []db.DailySubtask

	query := s.db.Where("user_id = ?", userID)
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}
	if filter.WeeklyGoalID != "" {
		query = query.Where("weekly_goal_id = ?", filter.WeeklyGoalID)
	}

	if err := query.Order("date DESC").Order("created_at ASC").Find(&subtasks).Error; err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return subtasks, nil
}

// Get 根据 ID 获取行动
func (s *SubtaskService) Get(userID, id string) (*db.DailySubtask, error) {
	return findOwned[db.DailySubtask](s.db, userID, id, ErrSubtaskNotFound, "subtask")
}

// Create 新建行动，新行动总是未完成
func (s *SubtaskService) Create(userID string, input SubtaskInput) (*db.DailySubtask, error) {
	title := strings.TrimSpace(input.SubtaskTitle)
	if title == "" {
		return nil, fmt.Errorf("%w: subtask_title is required", ErrSubtaskInvalid)
	}
	if _, err := progress.ParseDate(input.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubtaskInvalid, err)
	}
	if input.EstimatedDuration != nil && *input.EstimatedDuration < 0 {
		return nil, fmt.Errorf("%w: estimated_duration must not be negative", ErrSubtaskInvalid)
	}

	subtask := db.DailySubtask{
		UserID:            userID,
		TaskID:            input.TaskID,
		WeeklyGoalID:      trimOptional(input.WeeklyGoalID),
		Date:              input.Date,
		SubtaskTitle:      title,
		Description:       trimOptional(input.Description),
		EstimatedDuration: input.EstimatedDuration,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[db.Task](tx, userID, input.TaskID, ErrTaskNotFound, "task"); err != nil {
			return err
		}
		if subtask.WeeklyGoalID != nil {
			week, err := findOwned[db.WeeklyGoal](tx, userID, *subtask.WeeklyGoalID, ErrWeeklyGoalNotFound, "weekly goal")
			if err != nil {
				return err
			}
			if week.TaskID != input.TaskID {
				return fmt.Errorf("%w: weekly goal belongs to another task", ErrSubtaskInvalid)
			}
		}
		if err := tx.Create(&subtask).Error; err != nil {
			return fmt.Errorf("create subtask: %w", err)
		}
		// 新增未完成行动会让已完成的一天回到未完成
		_, err := syncMark(tx, userID, subtask.TaskID, subtask.Date, true)
		return err
	}); err != nil {
		return nil, err
	}
	return &subtask, nil
}

// Update 更新行动；completed 变化时维护 completed_at 并重算当天打卡
func (s *SubtaskService) Update(userID, id string, patch SubtaskPatch) (*db.DailySubtask, error) {
	subtask, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.SubtaskTitle != nil {
		title := strings.TrimSpace(*patch.SubtaskTitle)
		if title == "" {
			return nil, fmt.Errorf("%w: subtask_title cannot be empty", ErrSubtaskInvalid)
		}
		updates["subtask_title"] = title
	}
	if patch.Description != nil {
		updates["description"] = trimOptional(patch.Description)
	}
	if patch.EstimatedDuration != nil {
		if *patch.EstimatedDuration < 0 {
			return nil, fmt.Errorf("%w: estimated_duration must not be negative", ErrSubtaskInvalid)
		}
		updates["estimated_duration"] = *patch.EstimatedDuration
	}

	toggled := patch.Completed != nil && *patch.Completed != subtask.Completed
	if toggled {
		updates["completed"] = *patch.Completed
		if *patch.Completed {
			completedAt := s.now()
			updates["completed_at"] = &completedAt
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) == 0 {
		return subtask, nil
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(subtask).Updates(updates).Error; err != nil {
			return fmt.Errorf("update subtask: %w", err)
		}
		if toggled {
			if _, err := syncMark(tx, userID, subtask.TaskID, subtask.Date, false); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.Get(userID, id)
}

// Delete 删除行动，并在当天已有打卡时重算
func (s *SubtaskService) Delete(userID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		subtask, err := findOwned[db.DailySubtask](tx, userID, id, ErrSubtaskNotFound, "subtask")
		if err != nil {
			return err
		}
		if err := tx.Delete(subtask).Error; err != nil {
			return fmt.Errorf("delete subtask: %w", err)
		}
		return resyncExistingMarks(tx, userID, []db.DailySubtask{*subtask})
	})
}
