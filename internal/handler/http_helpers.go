package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/deepwork/internal/locale"
	"github.com/deepwork/internal/progress"
	"github.com/deepwork/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondMessage 以请求语言输出错误提示
func respondMessage(c *gin.Context, status int, key locale.MessageKey) {
	respondError(c, status, locale.Message(requestLanguage(c), key))
}

func bindPayload(c *gin.Context, dst interface{}) bool {
	return bindJSON(c, dst, locale.Message(requestLanguage(c), locale.MsgInvalidPayload))
}

// fail 把 service/progress 层错误映射为状态码与本地化提示，5xx 写日志
func fail(c *gin.Context, err error) {
	status, key := classifyError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}

	body := gin.H{"error": locale.Message(requestLanguage(c), key)}
	if status == http.StatusBadRequest {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}

func classifyError(err error) (int, locale.MessageKey) {
	var validation *progress.ValidationError
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound, locale.MsgTaskNotFound
	case errors.Is(err, service.ErrMonthlyGoalNotFound), errors.Is(err, service.ErrWeeklyGoalNotFound):
		return http.StatusNotFound, locale.MsgGoalNotFound
	case errors.Is(err, service.ErrSubtaskNotFound):
		return http.StatusNotFound, locale.MsgSubtaskNotFound
	case errors.Is(err, service.ErrTaskInvalid):
		return http.StatusBadRequest, locale.MsgTaskInvalid
	case errors.Is(err, service.ErrGoalInvalid):
		return http.StatusBadRequest, locale.MsgGoalInvalid
	case errors.Is(err, service.ErrSubtaskInvalid):
		return http.StatusBadRequest, locale.MsgSubtaskInvalid
	case errors.Is(err, service.ErrMarkInvalid):
		return http.StatusBadRequest, locale.MsgMarkInvalid
	case errors.Is(err, progress.ErrInvalidRange):
		return http.StatusBadRequest, locale.MsgInvalidRange
	case errors.Is(err, progress.ErrEmptyPlan):
		return http.StatusBadRequest, locale.MsgEmptyPlan
	case errors.Is(err, progress.ErrDuplicateMark):
		return http.StatusConflict, locale.MsgDuplicateMark
	case errors.As(err, &validation):
		if strings.Contains(validation.Field, "date") || validation.Field == "start" || validation.Field == "end" {
			return http.StatusBadRequest, locale.MsgInvalidDate
		}
		return http.StatusBadRequest, locale.MsgInvalidPayload
	default:
		return http.StatusInternalServerError, locale.MsgInternal
	}
}

func parsePositiveQuery(c *gin.Context, key string, fallback, limit int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 || value > limit {
		return 0, false
	}
	return value, true
}
