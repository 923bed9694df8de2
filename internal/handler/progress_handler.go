package handler

import (
	"net/http"
	"strings"

	"github.com/deepwork/internal/locale"
	"github.com/deepwork/internal/progress"
	"github.com/gin-gonic/gin"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 366
)

// GetToday 返回某天（默认今天）的目标层级视图
func (a *API) GetToday(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = a.today()
	}

	dayView, err := a.progress.Today(c.Request.Context(), currentUserID(c), date)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, dayView)
}

// GetAnalytics 统计报表；提供 start/end 时按区间，否则取最近 days 天
func (a *API) GetAnalytics(c *gin.Context) {
	start, end, ok := a.analyticsRange(c)
	if !ok {
		return
	}

	report, err := a.progress.Analytics(c.Request.Context(), currentUserID(c), start, end)
	if err != nil {
		fail(c, err)
		return
	}

	labels := locale.WeekdayLabels(requestLanguage(c))
	for i := range report.Weekdays {
		report.Weekdays[i].Label = labels[report.Weekdays[i].Day]
	}
	respondData(c, http.StatusOK, report)
}

// GetCalendar 返回月历，month 默认当前月份，备注渲染为 HTML
func (a *API) GetCalendar(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = progress.MonthYear(a.now())
	}

	cal, err := a.progress.Calendar(c.Request.Context(), currentUserID(c), month)
	if err != nil {
		fail(c, err)
		return
	}

	for i := range cal.Days {
		day := &cal.Days[i]
		for _, note := range day.Notes {
			rendered, err := renderNotes(note)
			if err != nil {
				fail(c, err)
				return
			}
			day.NotesHTML = append(day.NotesHTML, rendered)
		}
	}
	respondData(c, http.StatusOK, cal)
}

func (a *API) analyticsRange(c *gin.Context) (string, string, bool) {
	start := strings.TrimSpace(c.Query("start"))
	end := strings.TrimSpace(c.Query("end"))
	if start != "" || end != "" {
		if end == "" {
			end = a.today()
		}
		if start == "" {
			start = end
		}
		return start, end, true
	}

	days, ok := parsePositiveQuery(c, "days", defaultAnalyticsDays, maxAnalyticsDays)
	if !ok {
		respondMessage(c, http.StatusBadRequest, locale.MsgInvalidPayload)
		return "", "", false
	}

	end = a.today()
	start, err := progress.AddDays(end, -(days - 1))
	if err != nil {
		fail(c, err)
		return "", "", false
	}
	return start, end, true
}
