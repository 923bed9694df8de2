package db

import "time"

// DailySubtask 某一天的具体行动项
// WeeklyGoalID 为空表示临时行动；CompletedAt 仅在 Completed=true 时有值
type DailySubtask struct {
	Record
	UserID            string     `gorm:"size:36;index;not null" json:"user_id"`
	TaskID            string     `gorm:"size:36;index;not null" json:"task_id"`
	WeeklyGoalID      *string    `gorm:"size:36;index" json:"weekly_goal_id"`
	Date              string     `gorm:"size:10;index;not null" json:"date"`
	SubtaskTitle      string     `gorm:"not null" json:"subtask_title"`
	Description       *string    `json:"description"`
	EstimatedDuration *int       `json:"estimated_duration"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at"`
}

// DailyMark 记录任务在某天的整体完成情况
// TaskID + Date 采用唯一索引，写入一律走 upsert
type DailyMark struct {
	Record
	UserID    string  `gorm:"size:36;index;not null" json:"user_id"`
	TaskID    string  `gorm:"size:36;not null;uniqueIndex:idx_daily_mark_task_date" json:"task_id"`
	Date      string  `gorm:"size:10;not null;uniqueIndex:idx_daily_mark_task_date" json:"date"`
	Completed bool    `json:"completed"`
	Notes     *string `json:"notes"`
}

// TableName 确保唯一索引作用到 task_id + date
func (DailyMark) TableName() string {
	return "daily_marks"
}
