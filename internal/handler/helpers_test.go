package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubHTMLRender struct {
	name string
	data interface{}
}

type stubHTMLInstance struct{}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.name = name
	r.data = data
	return &stubHTMLInstance{}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

var testDBCounter atomic.Int64

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", testDBCounter.Add(1))
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type testEnv struct {
	api       *API
	db        *gorm.DB
	html      *stubHTMLRender
	router    *gin.Engine
	publicDir string
}

// newTestEnv builds an API over an in-memory database, local storage in a
// temp dir and a router that can fake an admin session via /test/login.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := setupHandlerTestDB(t)
	publicDir := t.TempDir()
	objects := storage.NewLocalStorage(t.TempDir(), "/static/uploads")
	api := NewAPI(gdb, objects, Options{PublicDir: publicDir, SynthesizeMissing: true})
	api.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	html := &stubHTMLRender{}
	router := gin.New()
	router.HTMLRender = html
	router.Use(sessions.Sessions("harvestcms_session", cookie.NewStore([]byte("test-secret"))))
	router.GET("/test/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(sessionUserID, uint(1))
		session.Set(sessionUsername, "editor")
		session.Save()
		c.Status(http.StatusNoContent)
	})

	return &testEnv{api: api, db: gdb, html: html, router: router, publicDir: publicDir}
}

func (e *testEnv) writePublic(t *testing.T, name, markup string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.publicDir, name), []byte(markup), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func seedPage(t *testing.T, gdb *gorm.DB, slug, title string, sections map[string]string) *db.Page {
	t.Helper()
	page := db.Page{Slug: slug, Title: title}
	if err := gdb.Create(&page).Error; err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	for name, raw := range sections {
		section := db.Section{PageID: page.ID, SectionName: name, Content: datatypes.JSON(raw)}
		if err := gdb.Create(&section).Error; err != nil {
			t.Fatalf("failed to create section: %v", err)
		}
	}
	if err := gdb.Preload("Sections").First(&page, page.ID).Error; err != nil {
		t.Fatalf("failed to reload page: %v", err)
	}
	return &page
}

func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test/login", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	return cookies
}

func (e *testEnv) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
