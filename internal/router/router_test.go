package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/handler"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var routerDBCounter atomic.Int64

func setupRouterTest(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-test-%d?mode=memory&cache=shared", routerDBCounter.Add(1))
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.EnsureUser(gdb, "admin", "s3cret"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	r := SetupRouter(handler.NewAPI(gdb), "test-secret")
	return r, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func postJSON(r http.Handler, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Accept-Language", "en")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] != "Unauthorized" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestLoginFlow(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	if w := postJSON(r, "/api/auth/login", map[string]string{"username": "admin", "password": "wrong"}, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", w.Code)
	}

	w := postJSON(r, "/api/auth/login", map[string]string{"username": "admin", "password": "s3cret"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	w = postJSON(r, "/api/tasks", map[string]any{"name": "写作"}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 with session, got %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(r, "/api/auth/logout", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", w.Code)
	}
	if w := postJSON(r, "/api/tasks", map[string]any{"name": "x"}, w.Result().Cookies()); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}
