package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deepwork/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var handlerDBCounter atomic.Int64

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Detail string          `json:"detail"`
}

func setupTestAPI(t *testing.T) (*API, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-test-%d?mode=memory&cache=shared", handlerDBCounter.Add(1))
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	api := NewAPI(gdb).WithClock(func() time.Time {
		return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	})

	return api, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// newTestEngine 用固定用户代替会话鉴权
func newTestEngine(api *API, userID string) *gin.Engine {
	r := gin.New()
	r.Use(LocaleMiddleware())
	group := r.Group("/api")
	group.Use(func(c *gin.Context) {
		c.Set(userContextKey, userID)
		c.Next()
	})
	api.RegisterRoutes(group)
	return r
}

func performJSON(t *testing.T, r http.Handler, method, path string, payload any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var body io.Reader
	switch v := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func decodeData(t *testing.T, resp envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", string(resp.Data), err)
	}
}

func createTestTask(t *testing.T, r http.Handler, name string) db.Task {
	t.Helper()
	w, resp := performJSON(t, r, http.MethodPost, "/api/tasks", map[string]any{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating task, got %d: %s", w.Code, w.Body.String())
	}
	var task db.Task
	decodeData(t, resp, &task)
	return task
}

func createTestMonthlyGoal(t *testing.T, r http.Handler, payload map[string]any) db.MonthlyGoal {
	t.Helper()
	w, resp := performJSON(t, r, http.MethodPost, "/api/goals/monthly", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating monthly goal, got %d: %s", w.Code, w.Body.String())
	}
	var goal db.MonthlyGoal
	decodeData(t, resp, &goal)
	return goal
}
