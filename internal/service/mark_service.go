package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/progress"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMarkInvalid 打卡参数校验失败
var ErrMarkInvalid = errors.New("invalid daily mark")

// MarkService 负责每日打卡的读写，(task_id, date) 上只保留一条记录
type MarkService struct {
	db *gorm.DB
}

// MarkFilter 指定查询区间，均为闭区间，空值表示不限制
type MarkFilter struct {
	StartDate string
	EndDate   string
	TaskID    string
}

// MarkInput 打卡输入；Completed/Notes 为 nil 时保留已有值
type MarkInput struct {
	TaskID    string
	Date      string
	Completed *bool
	Notes     *string
}

// NewMarkService 构造 MarkService
func NewMarkService(gdb *gorm.DB) *MarkService {
	return &MarkService{db: gdb}
}

// List 按日期倒序返回打卡记录
func (s *MarkService) List(userID string, filter MarkFilter) ([]db.DailyMark, error) {
	var marks []db.DailyMark

	query := s.db.Where("user_id = ?", userID)
	if filter.StartDate != "" {
		if _, err := progress.ParseDate(filter.StartDate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMarkInvalid, err)
		}
		query = query.Where("date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		if _, err := progress.ParseDate(filter.EndDate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMarkInvalid, err)
		}
		query = query.Where("date <= ?", filter.EndDate)
	}
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}

	if err := query.Order("date DESC").Order("task_id ASC").Find(&marks).Error; err != nil {
		return nil, fmt.Errorf("list daily marks: %w", err)
	}
	return marks, nil
}

// Upsert 幂等打卡：存在则只更新提供的字段，否则创建。created 表示是否新建。
func (s *MarkService) Upsert(userID string, input MarkInput) (mark *db.DailyMark, created bool, err error) {
	if strings.TrimSpace(input.TaskID) == "" {
		return nil, false, fmt.Errorf("%w: task_id is required", ErrMarkInvalid)
	}
	if _, err := progress.ParseDate(input.Date); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMarkInvalid, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[db.Task](tx, userID, input.TaskID, ErrTaskNotFound, "task"); err != nil {
			return err
		}
		mark, created, err = upsertMark(tx, userID, input)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return mark, created, nil
}

// Sync 根据当天行动是否全部完成重算打卡，调用方负责提供事务
func (s *MarkService) Sync(tx *gorm.DB, userID, taskID, date string) (*db.DailyMark, error) {
	return syncMark(tx, userID, taskID, date, false)
}

func upsertMark(tx *gorm.DB, userID string, input MarkInput) (*db.DailyMark, bool, error) {
	record := db.DailyMark{
		UserID: userID,
		TaskID: input.TaskID,
		Date:   input.Date,
		Notes:  trimOptional(input.Notes),
	}

	columns := []string{"updated_at"}
	if input.Completed != nil {
		record.Completed = *input.Completed
		columns = append(columns, "completed")
	}
	if input.Notes != nil {
		columns = append(columns, "notes")
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&record).Error; err != nil {
		return nil, false, fmt.Errorf("upsert daily mark: %w", err)
	}

	insertedID := record.ID
	var stored db.DailyMark
	if err := tx.Where("task_id = ? AND date = ?", input.TaskID, input.Date).First(&stored).Error; err != nil {
		return nil, false, fmt.Errorf("reload daily mark: %w", err)
	}
	return &stored, stored.ID == insertedID, nil
}

// syncMark 把 DayComplete 的结果写回打卡；onlyExisting 时当天没有打卡则跳过。
// 结果与已存储的状态一致时不写库，重复调用不会改动记录。
func syncMark(tx *gorm.DB, userID, taskID, date string, onlyExisting bool) (*db.DailyMark, error) {
	var existing []db.DailyMark
	if err := tx.Where("user_id = ? AND task_id = ? AND date = ?", userID, taskID, date).
		Limit(1).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("find daily mark: %w", err)
	}
	if onlyExisting && len(existing) == 0 {
		return nil, nil
	}

	var subtasks []db.DailySubtask
	if err := tx.Where("user_id = ? AND task_id = ? AND date = ?", userID, taskID, date).
		Find(&subtasks).Error; err != nil {
		return nil, fmt.Errorf("list subtasks for mark: %w", err)
	}

	completed := progress.DayComplete(subtasks)
	if len(existing) == 1 && existing[0].Completed == completed {
		return &existing[0], nil
	}
	mark, _, err := upsertMark(tx, userID, MarkInput{TaskID: taskID, Date: date, Completed: &completed})
	return mark, err
}

type taskDay struct {
	taskID string
	date   string
}

// resyncExistingMarks 在批量删除行动后重算受影响日期上已存在的打卡
func resyncExistingMarks(tx *gorm.DB, userID string, subtasks []db.DailySubtask) error {
	seen := make(map[taskDay]struct{})
	for _, subtask := range subtasks {
		key := taskDay{taskID: subtask.TaskID, date: subtask.Date}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if _, err := syncMark(tx, userID, key.taskID, key.date, true); err != nil {
			return err
		}
	}
	return nil
}
