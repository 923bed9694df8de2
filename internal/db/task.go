package db

// 月度目标状态，只有 active 视为当前目标
const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusCancelled = "cancelled"
)

// Task 定义了需要长期坚持的深度工作任务
// 归档通过 IsActive=false 实现，存在目标引用时不做物理删除
type Task struct {
	Record
	UserID            string  `gorm:"size:36;index;not null" json:"user_id"`
	Name              string  `gorm:"not null" json:"name"`
	Description       *string `json:"description"`
	TargetDaysPerWeek int     `json:"target_days_per_week"`
	Color             string  `gorm:"size:16" json:"color"`
	IsActive          bool    `gorm:"index" json:"is_active"`
}

// MonthlyGoal 任务下的月度目标
// MonthYear 形如 2024-01；TargetDate 为空表示未设定截止日
type MonthlyGoal struct {
	Record
	UserID             string  `gorm:"size:36;index;not null" json:"user_id"`
	TaskID             string  `gorm:"size:36;index;not null" json:"task_id"`
	GoalTitle          string  `gorm:"not null" json:"goal_title"`
	Description        *string `json:"description"`
	TargetDate         *string `gorm:"size:10" json:"target_date"`
	ProgressPercentage int     `json:"progress_percentage"`
	MonthYear          string  `gorm:"size:7" json:"month_year"`
	Status             string  `gorm:"size:16;index" json:"status"`
}

// WeeklyGoal 月度目标拆解出的周目标，同一周窗口可以有多个
type WeeklyGoal struct {
	Record
	UserID        string  `gorm:"size:36;index;not null" json:"user_id"`
	MonthlyGoalID string  `gorm:"size:36;index;not null" json:"monthly_goal_id"`
	TaskID        string  `gorm:"size:36;index;not null" json:"task_id"`
	GoalTitle     string  `gorm:"not null" json:"goal_title"`
	Description   *string `json:"description"`
	WeekStartDate string  `gorm:"size:10;index" json:"week_start_date"`
	WeekEndDate   string  `gorm:"size:10" json:"week_end_date"`
	Completed     bool    `json:"completed"`
}
