package handler

import (
	"net/http"

	"github.com/deepwork/internal/service"
	"github.com/gin-gonic/gin"
)

type subtaskPayload struct {
	TaskID            string  `json:"task_id"`
	WeeklyGoalID      *string `json:"weekly_goal_id"`
	Date              string  `json:"date"`
	SubtaskTitle      *string `json:"subtask_title"`
	Description       *string `json:"description"`
	EstimatedDuration *int    `json:"estimated_duration"`
	Completed         *bool   `json:"completed"`
}

// ListSubtasks 支持 date、task_id、weekly_goal_id 过滤
func (a *API) ListSubtasks(c *gin.Context) {
	subtasks, err := a.subtasks.List(currentUserID(c), service.SubtaskFilter{
		Date:         c.Query("date"),
		TaskID:       c.Query("task_id"),
		WeeklyGoalID: c.Query("weekly_goal_id"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, subtasks)
}

// CreateSubtask 新建行动，date 为空时取今天
func (a *API) CreateSubtask(c *gin.Context) {
	var payload subtaskPayload
	if !bindPayload(c, &payload) {
		return
	}

	input := service.SubtaskInput{
		TaskID:            payload.TaskID,
		WeeklyGoalID:      payload.WeeklyGoalID,
		Date:              payload.Date,
		Description:       payload.Description,
		EstimatedDuration: payload.EstimatedDuration,
	}
	if input.Date == "" {
		input.Date = a.today()
	}
	if payload.SubtaskTitle != nil {
		input.SubtaskTitle = *payload.SubtaskTitle
	}

	subtask, err := a.subtasks.Create(currentUserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusCreated, subtask)
}

// UpdateSubtask 更新行动，主要用于勾选完成
func (a *API) UpdateSubtask(c *gin.Context) {
	var payload subtaskPayload
	if !bindPayload(c, &payload) {
		return
	}

	subtask, err := a.subtasks.Update(currentUserID(c), c.Param("id"), service.SubtaskPatch{
		SubtaskTitle:      payload.SubtaskTitle,
		Description:       payload.Description,
		EstimatedDuration: payload.EstimatedDuration,
		Completed:         payload.Completed,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, subtask)
}

// DeleteSubtask 删除行动
func (a *API) DeleteSubtask(c *gin.Context) {
	if err := a.subtasks.Delete(currentUserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
