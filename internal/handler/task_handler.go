package handler

import (
	"net/http"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/service"
	"github.com/deepwork/internal/view"
	"github.com/gin-gonic/gin"
)

type taskPayload struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	TargetDaysPerWeek *int    `json:"target_days_per_week"`
	Color             *string `json:"color"`
	IsActive          *bool   `json:"is_active"`
}

// ListTasks 返回任务列表，include_archived=true 时包含已归档任务
func (a *API) ListTasks(c *gin.Context) {
	activeOnly := c.Query("include_archived") != "true"
	tasks, err := a.tasks.List(currentUserID(c), activeOnly)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, tasks)
}

// GetTask 返回任务及其月度目标，附带默认选中的月度目标
func (a *API) GetTask(c *gin.Context) {
	userID := currentUserID(c)
	task, err := a.tasks.Get(userID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	goals, err := a.monthlyGoals.List(userID, service.MonthlyGoalFilter{TaskID: task.ID})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":                     task,
		"monthly_goals":            goals,
		"selected_monthly_goal_id": selectMonthlyGoal(goals),
	})
}

// CreateTask 新建任务
func (a *API) CreateTask(c *gin.Context) {
	var payload taskPayload
	if !bindPayload(c, &payload) {
		return
	}

	input := service.TaskInput{Description: payload.Description}
	if payload.Name != nil {
		input.Name = *payload.Name
	}
	if payload.TargetDaysPerWeek != nil {
		input.TargetDaysPerWeek = *payload.TargetDaysPerWeek
	}
	if payload.Color != nil {
		input.Color = *payload.Color
	}

	task, err := a.tasks.Create(currentUserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusCreated, task)
}

// UpdateTask 按字段更新任务
func (a *API) UpdateTask(c *gin.Context) {
	var payload taskPayload
	if !bindPayload(c, &payload) {
		return
	}

	task, err := a.tasks.Update(currentUserID(c), c.Param("id"), service.TaskPatch{
		Name:              payload.Name,
		Description:       payload.Description,
		TargetDaysPerWeek: payload.TargetDaysPerWeek,
		Color:             payload.Color,
		IsActive:          payload.IsActive,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// ArchiveTask 归档任务，任务本身不会被删除
func (a *API) ArchiveTask(c *gin.Context) {
	task, err := a.tasks.Archive(currentUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// ListTaskColors 返回任务可选颜色
func (a *API) ListTaskColors(c *gin.Context) {
	respondData(c, http.StatusOK, view.TaskColorOptions())
}

// selectMonthlyGoal 默认选中第一个进行中的月度目标
func selectMonthlyGoal(goals []db.MonthlyGoal) string {
	for _, goal := range goals {
		if goal.Status == db.GoalStatusActive {
			return goal.ID
		}
	}
	return ""
}
