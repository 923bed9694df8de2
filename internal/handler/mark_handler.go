package handler

import (
	"net/http"

	"github.com/deepwork/internal/service"
	"github.com/gin-gonic/gin"
)

type markPayload struct {
	TaskID    string  `json:"task_id"`
	Date      string  `json:"date"`
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes"`
}

// ListMarks 支持 start_date、end_date、task_id 过滤
func (a *API) ListMarks(c *gin.Context) {
	marks, err := a.marks.List(currentUserID(c), service.MarkFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		TaskID:    c.Query("task_id"),
	})
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]markView, 0, len(marks))
	for _, mark := range marks {
		view, err := toMarkView(mark)
		if err != nil {
			fail(c, err)
			return
		}
		views = append(views, view)
	}
	respondData(c, http.StatusOK, views)
}

// UpsertMark 创建或更新打卡，新建返回 201
func (a *API) UpsertMark(c *gin.Context) {
	var payload markPayload
	if !bindPayload(c, &payload) {
		return
	}

	mark, created, err := a.marks.Upsert(currentUserID(c), service.MarkInput{
		TaskID:    payload.TaskID,
		Date:      payload.Date,
		Completed: payload.Completed,
		Notes:     payload.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}

	view, err := toMarkView(*mark)
	if err != nil {
		fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondData(c, status, view)
}
