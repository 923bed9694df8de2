package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/view"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 在任务不存在或不属于当前用户时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskInvalid 任务字段校验失败
	ErrTaskInvalid = errors.New("invalid task")
)

// DefaultTargetDaysPerWeek 创建任务时未指定每周天数的默认值
const DefaultTargetDaysPerWeek = 5

// TaskService 负责任务的增删改查，任务只归档不物理删除
type TaskService struct {
	db *gorm.DB
}

// TaskInput 定义创建任务时可配置字段
type TaskInput struct {
	Name              string
	Description       *string
	TargetDaysPerWeek int
	Color             string
}

// TaskPatch 字段级更新，nil 表示不修改
type TaskPatch struct {
	Name              *string
	Description       *string
	TargetDaysPerWeek *int
	Color             *string
	IsActive          *bool
}

// NewTaskService 构造 TaskService
func NewTaskService(gdb *gorm.DB) *TaskService {
	return &TaskService{db: gdb}
}

// List 返回用户的任务，activeOnly 时过滤掉已归档任务
func (s *TaskService) List(userID string, activeOnly bool) ([]db.Task, error) {
	var tasks []db.Task

	query := s.db.Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get 根据 ID 获取任务
func (s *TaskService) Get(userID, id string) (*db.Task, error) {
	return findOwned[db.Task](s.db, userID, id, ErrTaskNotFound, "task")
}

// Create 新建任务，未指定颜色时从调色板随机选取
func (s *TaskService) Create(userID string, input TaskInput) (*db.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrTaskInvalid)
	}

	days := input.TargetDaysPerWeek
	if days == 0 {
		days = DefaultTargetDaysPerWeek
	}
	if err := validateTargetDays(days); err != nil {
		return nil, err
	}

	color, err := resolveTaskColor(input.Color)
	if err != nil {
		return nil, err
	}

	task := db.Task{
		UserID:            userID,
		Name:              name,
		Description:       trimOptional(input.Description),
		TargetDaysPerWeek: days,
		Color:             color,
		IsActive:          true,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Update 按字段更新任务；IsActive 由 true 变为 false 时走归档逻辑
func (s *TaskService) Update(userID, id string, patch TaskPatch) (*db.Task, error) {
	task, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrTaskInvalid)
		}
		updates["name"] = name
	}
	if patch.Description != nil {
		updates["description"] = trimOptional(patch.Description)
	}
	if patch.TargetDaysPerWeek != nil {
		if err := validateTargetDays(*patch.TargetDaysPerWeek); err != nil {
			return nil, err
		}
		updates["target_days_per_week"] = *patch.TargetDaysPerWeek
	}
	if patch.Color != nil {
		color, ok := view.NormalizeTaskColor(*patch.Color)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported color %s", ErrTaskInvalid, *patch.Color)
		}
		updates["color"] = color
	}

	archiving := false
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
		archiving = task.IsActive && !*patch.IsActive
	}

	if len(updates) == 0 {
		return task, nil
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Updates(updates).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if archiving {
			return cancelActiveGoals(tx, userID, id)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.Get(userID, id)
}

// Archive 归档任务并在同一事务内取消其进行中的月度目标
func (s *TaskService) Archive(userID, id string) (*db.Task, error) {
	inactive := false
	return s.Update(userID, id, TaskPatch{IsActive: &inactive})
}

func cancelActiveGoals(tx *gorm.DB, userID, taskID string) error {
	if err := tx.Model(&db.MonthlyGoal{}).
		Where("user_id = ? AND task_id = ? AND status = ?", userID, taskID, db.GoalStatusActive).
		Update("status", db.GoalStatusCancelled).Error; err != nil {
		return fmt.Errorf("cancel monthly goals: %w", err)
	}
	return nil
}

func validateTargetDays(days int) error {
	if days < 1 || days > 7 {
		return fmt.Errorf("%w: target_days_per_week must be between 1 and 7", ErrTaskInvalid)
	}
	return nil
}

func resolveTaskColor(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return view.RandomTaskColor(), nil
	}
	color, ok := view.NormalizeTaskColor(input)
	if !ok {
		return "", fmt.Errorf("%w: unsupported color %s", ErrTaskInvalid, input)
	}
	return color, nil
}
