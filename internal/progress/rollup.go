package progress

import (
	"github.com/deepwork/internal/db"
)

// WeeklyGoalNode 是当天在范围内的一个周目标及其当日行动
type WeeklyGoalNode struct {
	Goal      db.WeeklyGoal     `json:"goal"`
	Subtasks  []db.DailySubtask `json:"subtasks"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	// CompletionRatio 为 Completed/Total 的原始比值，取整交给展示层
	CompletionRatio float64 `json:"completion_ratio"`
}

// MonthlyGoalNode 当前月度目标；NoPlanThisWeek 表示本周没有任何周目标覆盖当天，
// 与“有计划但未完成”是两种不同状态
type MonthlyGoalNode struct {
	Goal           db.MonthlyGoal   `json:"goal"`
	WeeklyGoals    []WeeklyGoalNode `json:"weekly_goals"`
	NoPlanThisWeek bool             `json:"no_plan_this_week"`
}

// TaskNode 汇总一个任务当天的视图
type TaskNode struct {
	Task         db.Task           `json:"task"`
	MonthlyGoals []MonthlyGoalNode `json:"monthly_goals"`
	// UnattachedSubtasks 是没有关联周目标的临时行动
	UnattachedSubtasks []db.DailySubtask `json:"unattached_subtasks"`
	// OtherSubtasks 关联的周目标不在当天范围内，或所属月度目标没有展开
	OtherSubtasks []db.DailySubtask `json:"other_subtasks"`
}

// DailySummary 是当天所有任务的汇总
type DailySummary struct {
	TotalActions     int `json:"total_actions"`
	CompletedActions int `json:"completed_actions"`
	MonthlyGoals     int `json:"monthly_goals"`
	WeeklyGoals      int `json:"weekly_goals"`
	CompletionRate   int `json:"completion_rate"`
}

// DailyView 是目标层级在某一天的展开结果
type DailyView struct {
	Date    string       `json:"date"`
	Tasks   []TaskNode   `json:"tasks"`
	Summary DailySummary `json:"summary"`
}

// BuildDailyView 把任务、当前月度目标、周目标以及当日行动组装成嵌套视图。
// 输入由调用方预先查询，函数本身不做任何 I/O，也不修改入参。
func BuildDailyView(tasks []db.Task, monthlyGoals []db.MonthlyGoal, weeklyGoals []db.WeeklyGoal, subtasks []db.DailySubtask, targetDate string) (DailyView, error) {
	if _, err := parseField("target_date", targetDate); err != nil {
		return DailyView{}, err
	}

	activeTasks := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		if task.IsActive {
			activeTasks[task.ID] = struct{}{}
		}
	}

	// 只有会被展开的月度目标才能认领周目标，其余行动落入 OtherSubtasks
	goalsByTask := make(map[string][]db.MonthlyGoal)
	renderedGoals := make(map[string]struct{})
	for _, goal := range monthlyGoals {
		if goal.Status != db.GoalStatusActive || !hasKey(activeTasks, goal.TaskID) {
			continue
		}
		goalsByTask[goal.TaskID] = append(goalsByTask[goal.TaskID], goal)
		renderedGoals[goal.ID] = struct{}{}
	}

	inScope := make(map[string][]db.WeeklyGoal)
	inScopeIDs := make(map[string]struct{})
	for _, week := range weeklyGoals {
		ok, err := weekCovers(week, targetDate)
		if err != nil {
			return DailyView{}, err
		}
		if !ok || !hasKey(renderedGoals, week.MonthlyGoalID) {
			continue
		}
		inScope[week.MonthlyGoalID] = append(inScope[week.MonthlyGoalID], week)
		inScopeIDs[week.ID] = struct{}{}
	}

	byWeek := make(map[string][]db.DailySubtask)
	unattached := make(map[string][]db.DailySubtask)
	other := make(map[string][]db.DailySubtask)
	for _, subtask := range subtasks {
		if _, err := parseField("subtask.date", subtask.Date); err != nil {
			return DailyView{}, err
		}
		if subtask.Date != targetDate {
			continue
		}
		switch {
		case subtask.WeeklyGoalID == nil || *subtask.WeeklyGoalID == "":
			unattached[subtask.TaskID] = append(unattached[subtask.TaskID], subtask)
		case hasKey(inScopeIDs, *subtask.WeeklyGoalID):
			byWeek[*subtask.WeeklyGoalID] = append(byWeek[*subtask.WeeklyGoalID], subtask)
		default:
			other[subtask.TaskID] = append(other[subtask.TaskID], subtask)
		}
	}

	view := DailyView{Date: targetDate, Tasks: make([]TaskNode, 0, len(tasks))}
	for _, task := range tasks {
		if !task.IsActive {
			continue
		}

		node := TaskNode{
			Task:               task,
			MonthlyGoals:       make([]MonthlyGoalNode, 0, len(goalsByTask[task.ID])),
			UnattachedSubtasks: nonNil(unattached[task.ID]),
			OtherSubtasks:      nonNil(other[task.ID]),
		}

		for _, goal := range goalsByTask[task.ID] {
			weeks := inScope[goal.ID]
			goalNode := MonthlyGoalNode{
				Goal:           goal,
				WeeklyGoals:    make([]WeeklyGoalNode, 0, len(weeks)),
				NoPlanThisWeek: len(weeks) == 0,
			}
			for _, week := range weeks {
				weekNode := buildWeeklyNode(week, byWeek[week.ID])
				goalNode.WeeklyGoals = append(goalNode.WeeklyGoals, weekNode)

				view.Summary.WeeklyGoals++
				view.Summary.TotalActions += weekNode.Total
				view.Summary.CompletedActions += weekNode.Completed
			}
			node.MonthlyGoals = append(node.MonthlyGoals, goalNode)
			view.Summary.MonthlyGoals++
		}

		for _, loose := range [][]db.DailySubtask{node.UnattachedSubtasks, node.OtherSubtasks} {
			done, total := countCompleted(loose)
			view.Summary.CompletedActions += done
			view.Summary.TotalActions += total
		}

		view.Tasks = append(view.Tasks, node)
	}

	view.Summary.CompletionRate = Percentage(view.Summary.CompletedActions, view.Summary.TotalActions)
	return view, nil
}

func buildWeeklyNode(week db.WeeklyGoal, subtasks []db.DailySubtask) WeeklyGoalNode {
	done, total := countCompleted(subtasks)
	return WeeklyGoalNode{
		Goal:            week,
		Subtasks:        nonNil(subtasks),
		Completed:       done,
		Total:           total,
		CompletionRatio: Ratio(done, total),
	}
}

func weekCovers(week db.WeeklyGoal, date string) (bool, error) {
	start, err := parseField("week_start_date", week.WeekStartDate)
	if err != nil {
		return false, err
	}
	end, err := parseField("week_end_date", week.WeekEndDate)
	if err != nil {
		return false, err
	}
	if end.Before(start) {
		return false, invalid("week_end_date", week.WeekEndDate, "is before week_start_date")
	}
	return InWindow(date, week.WeekStartDate, week.WeekEndDate), nil
}

// DayComplete 判断某任务当天的行动是否全部完成；没有行动时视为未完成
func DayComplete(subtasks []db.DailySubtask) bool {
	if len(subtasks) == 0 {
		return false
	}
	for _, subtask := range subtasks {
		if !subtask.Completed {
			return false
		}
	}
	return true
}

// Ratio 返回 part/total，total 为 0 时定义为 0
func Ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func countCompleted(subtasks []db.DailySubtask) (done, total int) {
	for _, subtask := range subtasks {
		if subtask.Completed {
			done++
		}
	}
	return done, len(subtasks)
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
