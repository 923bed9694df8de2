package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/deepwork/internal/locale"
	"github.com/deepwork/internal/progress"
	"github.com/deepwork/internal/service"
	"github.com/gin-gonic/gin"
)

const maxPlanWeeks = 12

type monthlyGoalPayload struct {
	TaskID             string  `json:"task_id"`
	GoalTitle          *string `json:"goal_title"`
	Description        *string `json:"description"`
	TargetDate         *string `json:"target_date"`
	MonthYear          string  `json:"month_year"`
	ProgressPercentage *int    `json:"progress_percentage"`
	Status             *string `json:"status"`
}

type weeklyGoalPayload struct {
	MonthlyGoalID string  `json:"monthly_goal_id"`
	TaskID        string  `json:"task_id"`
	GoalTitle     *string `json:"goal_title"`
	Description   *string `json:"description"`
	WeekStartDate string  `json:"week_start_date"`
	WeekEndDate   string  `json:"week_end_date"`
	Completed     *bool   `json:"completed"`
}

// ListMonthlyGoals 支持 task_id、status 过滤
func (a *API) ListMonthlyGoals(c *gin.Context) {
	goals, err := a.monthlyGoals.List(currentUserID(c), service.MonthlyGoalFilter{
		TaskID: c.Query("task_id"),
		Status: c.Query("status"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, goals)
}

// GetMonthlyGoal 返回月度目标及其周目标
func (a *API) GetMonthlyGoal(c *gin.Context) {
	userID := currentUserID(c)
	goal, err := a.monthlyGoals.Get(userID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	weeks, err := a.weeklyGoals.List(userID, service.WeeklyGoalFilter{MonthlyGoalID: goal.ID})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": goal, "weekly_goals": weeks})
}

// CreateMonthlyGoal 新建月度目标
func (a *API) CreateMonthlyGoal(c *gin.Context) {
	var payload monthlyGoalPayload
	if !bindPayload(c, &payload) {
		return
	}

	input := service.MonthlyGoalInput{
		TaskID:      payload.TaskID,
		Description: payload.Description,
		TargetDate:  payload.TargetDate,
		MonthYear:   payload.MonthYear,
	}
	if payload.GoalTitle != nil {
		input.GoalTitle = *payload.GoalTitle
	}

	goal, err := a.monthlyGoals.Create(currentUserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusCreated, goal)
}

// UpdateMonthlyGoal 按字段更新月度目标
func (a *API) UpdateMonthlyGoal(c *gin.Context) {
	var payload monthlyGoalPayload
	if !bindPayload(c, &payload) {
		return
	}

	goal, err := a.monthlyGoals.Update(currentUserID(c), c.Param("id"), service.MonthlyGoalPatch{
		GoalTitle:          payload.GoalTitle,
		Description:        payload.Description,
		TargetDate:         payload.TargetDate,
		ProgressPercentage: payload.ProgressPercentage,
		Status:             payload.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, goal)
}

// DeleteMonthlyGoal 删除月度目标，级联删除周目标与行动
func (a *API) DeleteMonthlyGoal(c *gin.Context) {
	if err := a.monthlyGoals.Delete(currentUserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// PreviewWeeklyPlan 生成空白周计划，weeks 默认为 4
func (a *API) PreviewWeeklyPlan(c *gin.Context) {
	weeks, ok := parsePositiveQuery(c, "weeks", service.DefaultPlanWeeks, maxPlanWeeks)
	if !ok {
		respondMessage(c, http.StatusBadRequest, locale.MsgInvalidPayload)
		return
	}

	plan, err := a.weeklyGoals.PreviewPlan(currentUserID(c), c.Param("id"), service.PlanOptions{
		StartDate: c.Query("start_date"),
		Weeks:     weeks,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, plan)
}

// SaveWeeklyPlan 校验并保存周计划
func (a *API) SaveWeeklyPlan(c *gin.Context) {
	var plan progress.WeeklyPlan
	if !bindPayload(c, &plan) {
		return
	}

	goals, err := a.weeklyGoals.SavePlan(currentUserID(c), c.Param("id"), plan)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusCreated, goals)
}

// ListWeeklyGoals 支持 monthly_goal_id、task_id 过滤
func (a *API) ListWeeklyGoals(c *gin.Context) {
	goals, err := a.weeklyGoals.List(currentUserID(c), service.WeeklyGoalFilter{
		MonthlyGoalID: c.Query("monthly_goal_id"),
		TaskID:        c.Query("task_id"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, goals)
}

// CreateWeeklyGoals 请求体可以是单个对象或数组，数组整体写入或整体失败
func (a *API) CreateWeeklyGoals(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondMessage(c, http.StatusBadRequest, locale.MsgInvalidPayload)
		return
	}

	var payloads []weeklyGoalPayload
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		err = json.Unmarshal(trimmed, &payloads)
	} else {
		var single weeklyGoalPayload
		err = json.Unmarshal(trimmed, &single)
		payloads = []weeklyGoalPayload{single}
	}
	if err != nil {
		respondMessage(c, http.StatusBadRequest, locale.MsgInvalidPayload)
		return
	}

	inputs := make([]service.WeeklyGoalInput, 0, len(payloads))
	for _, payload := range payloads {
		input := service.WeeklyGoalInput{
			MonthlyGoalID: payload.MonthlyGoalID,
			TaskID:        payload.TaskID,
			Description:   payload.Description,
			WeekStartDate: payload.WeekStartDate,
			WeekEndDate:   payload.WeekEndDate,
		}
		if payload.GoalTitle != nil {
			input.GoalTitle = *payload.GoalTitle
		}
		inputs = append(inputs, input)
	}

	goals, err := a.weeklyGoals.Create(currentUserID(c), inputs)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusCreated, goals)
}

// UpdateWeeklyGoal 按字段更新周目标
func (a *API) UpdateWeeklyGoal(c *gin.Context) {
	var payload weeklyGoalPayload
	if !bindPayload(c, &payload) {
		return
	}

	goal, err := a.weeklyGoals.Update(currentUserID(c), c.Param("id"), service.WeeklyGoalPatch{
		GoalTitle:   payload.GoalTitle,
		Description: payload.Description,
		Completed:   payload.Completed,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, goal)
}

// DeleteWeeklyGoal 删除周目标及其行动
func (a *API) DeleteWeeklyGoal(c *gin.Context) {
	if err := a.weeklyGoals.Delete(currentUserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
