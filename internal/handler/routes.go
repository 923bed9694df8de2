package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes 挂载需要登录的业务接口，调用方负责鉴权中间件
func (a *API) RegisterRoutes(r gin.IRoutes) {
	r.GET("/tasks", a.ListTasks)
	r.POST("/tasks", a.CreateTask)
	r.GET("/tasks/:id", a.GetTask)
	r.PATCH("/tasks/:id", a.UpdateTask)
	r.DELETE("/tasks/:id", a.ArchiveTask)
	r.GET("/task-colors", a.ListTaskColors)

	r.GET("/goals/monthly", a.ListMonthlyGoals)
	r.POST("/goals/monthly", a.CreateMonthlyGoal)
	r.GET("/goals/monthly/:id", a.GetMonthlyGoal)
	r.PATCH("/goals/monthly/:id", a.UpdateMonthlyGoal)
	r.DELETE("/goals/monthly/:id", a.DeleteMonthlyGoal)
	r.GET("/goals/monthly/:id/plan", a.PreviewWeeklyPlan)
	r.POST("/goals/monthly/:id/plan", a.SaveWeeklyPlan)

	r.GET("/goals/weekly", a.ListWeeklyGoals)
	r.POST("/goals/weekly", a.CreateWeeklyGoals)
	r.PATCH("/goals/weekly/:id", a.UpdateWeeklyGoal)
	r.DELETE("/goals/weekly/:id", a.DeleteWeeklyGoal)

	r.GET("/subtasks", a.ListSubtasks)
	r.POST("/subtasks", a.CreateSubtask)
	r.PATCH("/subtasks/:id", a.UpdateSubtask)
	r.DELETE("/subtasks/:id", a.DeleteSubtask)

	r.GET("/marks", a.ListMarks)
	r.POST("/marks", a.UpsertMark)

	r.GET("/today", a.GetToday)
	r.GET("/analytics", a.GetAnalytics)
	r.GET("/calendar", a.GetCalendar)
}
