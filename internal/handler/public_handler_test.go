package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/ratelimit"
)

const testHomeMarkup = `<!DOCTYPE html><html><head><title>Home</title></head><body>
<section data-cms-hero><h1 data-cms-block="home_hero_title">Static title</h1></section>
<a data-setting="site_name">Static name</a>
<div data-cms-feed="projects"></div>
<div data-cms-feed="news"></div>
</body></html>`

func publicEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.writePublic(t, "index.html", testHomeMarkup)
	env.writePublic(t, "about.html", `<html><body><h1 data-cms-block="about_hero_title">About static</h1><p data-setting="site_name">x</p></body></html>`)
	env.router.GET("/", env.api.ShowHome)
	env.router.NoRoute(env.api.ShowPublicPage)
	return env
}

func TestShowHomeInjectsContent(t *testing.T) {
	env := publicEnv(t)
	seedPage(t, env.db, "index.html", "Home", map[string]string{
		"home_hero_title": `{"value":"Growing together"}`,
	})
	env.db.Create(&db.SiteSetting{Key: "site_name", Value: "Harvest Test"})
	env.db.Create(&db.NewsPost{Title: "Harvest day", Excerpt: "We harvested.", IsPublished: true, IsFeatured: true, PublishedAt: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Growing together",
		"Harvest Test",
		"No featured projects available.",
		"Harvest day",
		"Mar 4, 2025",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Static title") {
		t.Fatalf("static placeholder content should be replaced:\n%s", body)
	}
}

func TestShowPublicPageWithoutStoredPage(t *testing.T) {
	env := publicEnv(t)
	env.db.Create(&db.SiteSetting{Key: "site_name", Value: "Harvest Test"})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/about.html", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "About static") || !strings.Contains(body, "Harvest Test") {
		t.Fatalf("unexpected body:\n%s", body)
	}
}

func TestShowPublicPageNotFound(t *testing.T) {
	env := publicEnv(t)

	for _, target := range []string{"/missing.html", "/About.html", "/notes.txt", "/a/b.html"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, target, nil), nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusNotFound, rec.Code)
		}
	}
	rec := env.do(httptest.NewRequest(http.MethodPost, "/about.html", nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("POST: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSubmitContact(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/api/contact", env.api.SubmitContact)

	rec := env.do(postJSON("/api/contact", `{"name":"Ann","email":"Ann@Example.org","subject":"Hi","message":"Hello there"}`), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = env.do(postJSON("/api/contact", `{"name":"Ann","email":"ann@example.org"}`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	rec = env.do(postJSON("/api/contact", `{"name":"Ann","email":"not-an-email","message":"x"}`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var count int64
	env.db.Model(&db.ContactMessage{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 stored message, got %d", count)
	}
}

func TestSubscribeRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/api/newsletter", env.api.Subscribe)

	rec := env.do(postJSON("/api/newsletter", `{"email":"reader@example.org"}`), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = env.do(postJSON("/api/newsletter", `{"email":"reader@example.org"}`), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already subscribed") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/api/newsletter", RateLimit(ratelimit.NewLimiter(1, time.Minute)), env.api.Subscribe)

	rec := env.do(postJSON("/api/newsletter", `{"email":"one@example.org"}`), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("unexpected limit header %q", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec = env.do(postJSON("/api/newsletter", `{"email":"two@example.org"}`), nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	var count int64
	env.db.Model(&db.NewsletterSubscriber{}).Count(&count)
	if count != 1 {
		t.Fatalf("throttled request should not subscribe, got %d rows", count)
	}
}

func TestGetNewsArticle(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/api/news/:id", env.api.GetNewsArticle)

	published := db.NewsPost{Title: "Live", Content: "**bold**", IsPublished: true, PublishedAt: time.Now()}
	draft := db.NewsPost{Title: "Draft", Content: "x", PublishedAt: time.Now()}
	env.db.Create(&published)
	env.db.Create(&draft)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/news/"+strconv.Itoa(int(published.ID)), nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body.HTML, "<strong>bold</strong>") {
		t.Fatalf("expected rendered markdown, got %q", body.HTML)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/news/"+strconv.Itoa(int(draft.ID)), nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
