package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/content"
	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/handler"
	"github.com/harvestcms/internal/router"
	"github.com/harvestcms/internal/seed"
	"github.com/harvestcms/internal/storage"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	public    httpClient
	admin     httpClient
	baseURL   string
	adminPass string
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_SiteLifecycle(t *testing.T) {
	suite := newE2ESuite(t)
	suite.login(t)

	t.Run("projects", suite.testProjects)
	t.Run("news", suite.testNews)
	t.Run("page editor", suite.testPageEditor)
	t.Run("settings", suite.testSettings)
	t.Run("contact", suite.testContact)
	t.Run("uploads", suite.testUploads)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open("file:e2e?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if _, err := db.EnsureUser(gdb, "admin", "e2e-secret"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	doc, err := seed.Defaults()
	if err != nil {
		t.Fatalf("failed to load seed: %v", err)
	}
	if _, err := seed.Apply(context.Background(), gdb, doc, seed.Options{}); err != nil {
		t.Fatalf("failed to seed site: %v", err)
	}

	uploadDir := t.TempDir()
	objects := storage.NewLocalStorage(uploadDir, "/static/uploads")
	api := handler.NewAPI(gdb, objects, handler.Options{PublicDir: "../../web/public", SynthesizeMissing: true})
	engine := router.SetupRouter(api, router.Options{
		SessionSecret:     "test-session-secret",
		TemplateDir:       "../../web/template/admin",
		PublicDir:         "../../web/public",
		UploadDir:         uploadDir,
		UploadURLPath:     "/static/uploads",
		FormRatePerMinute: 100,
	})

	return &e2eSuite{
		public:    newLocalClient(engine, false),
		admin:     newLocalClient(engine, true),
		baseURL:   "http://example.test",
		adminPass: "e2e-secret",
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	form := url.Values{
		"username": {"admin"},
		"password": {s.adminPass},
	}
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	resp := s.mustRequest(t, s.admin, http.MethodPost, "/admin/login", strings.NewReader(form.Encode()), headers)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login failed, status %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testProjects(t *testing.T) {
	resp := s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/programs", nil, nil)
	var programs struct {
		Programs []db.Program `json:"programs"`
	}
	decodeJSON(t, resp, &programs)
	ids := map[string]uint{}
	for _, p := range programs.Programs {
		ids[p.Name] = p.ID
	}
	irrigation := ids["Solar-Powered Irrigation Technology"]
	training := ids["Capacity Building and Technical Training"]
	if irrigation == 0 || training == 0 {
		t.Fatalf("default programs missing: %v", ids)
	}

	created := s.createProject(t, map[string]interface{}{
		"title":        "Kisumu Solar Pumps",
		"location":     "Kisumu",
		"summary":      "Solar pumps for 40 farms.",
		"technologies": "Solar pumps",
		"is_featured":  true,
		"program_id":   irrigation,
	})
	if created.Technologies != "Solar pumps" {
		t.Fatalf("irrigation project should keep technologies, got %q", created.Technologies)
	}
	other := s.createProject(t, map[string]interface{}{
		"title":        "Farm School",
		"technologies": "Ignored",
		"program_id":   training,
	})
	if other.Technologies != "" {
		t.Fatalf("training project should drop technologies, got %q", other.Technologies)
	}

	s.expectPublic(t, "/", "Kisumu Solar Pumps", "projects.html?id="+idStr(created.ID))

	resp = s.mustRequest(t, s.admin, http.MethodDelete, "/admin/api/projects/"+idStr(other.ID), nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete project: status %d", resp.StatusCode)
	}
}

func (s *e2eSuite) createProject(t *testing.T, payload map[string]interface{}) db.Project {
	t.Helper()
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/api/projects", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var body struct {
		Project db.Project `json:"project"`
	}
	decodeJSON(t, resp, &body)
	return body.Project
}

func (s *e2eSuite) testNews(t *testing.T) {
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/api/news", map[string]interface{}{
		"title":        "Harvest Festival",
		"excerpt":      "A record season.",
		"content":      "We **celebrated** the harvest.",
		"is_published": true,
		"is_featured":  true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create news: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		News db.NewsPost `json:"news"`
	}
	decodeJSON(t, resp, &created)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4 report"))
	writer.Close()
	resp = s.mustRequest(t, s.admin, http.MethodPost, "/admin/api/news/"+idStr(created.News.ID)+"/attachments", body,
		map[string]string{"Content-Type": writer.FormDataContentType()})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("attach: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/news/"+idStr(created.News.ID), nil, nil)
	var article struct {
		News db.NewsPost `json:"news"`
		HTML string      `json:"html"`
	}
	decodeJSON(t, resp, &article)
	if !strings.Contains(article.HTML, "<strong>celebrated</strong>") {
		t.Fatalf("unexpected article html %q", article.HTML)
	}
	if len(article.News.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(article.News.Attachments))
	}

	s.expectPublic(t, "/news.html", "Harvest Festival", "Featured")
}

func (s *e2eSuite) testPageEditor(t *testing.T) {
	resp := s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/pages", nil, nil)
	var pages struct {
		Pages []struct {
			ID       uint   `json:"id"`
			Slug     string `json:"slug"`
			Editable bool   `json:"editable"`
		} `json:"pages"`
	}
	decodeJSON(t, resp, &pages)
	var homeID uint
	for _, p := range pages.Pages {
		if p.Slug == "index.html" {
			homeID = p.ID
		}
	}
	if homeID == 0 {
		t.Fatal("homepage missing from page list")
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/pages/"+idStr(homeID)+"/editor", nil, nil)
	var editor struct {
		Form content.Form `json:"form"`
	}
	decodeJSON(t, resp, &editor)
	var titleID uint
	for _, group := range editor.Form.Groups {
		for _, f := range group.Fields {
			if f.Key == "home_hero_title" {
				titleID = f.SectionID
			}
		}
	}
	if titleID == 0 {
		t.Fatal("hero title field missing from editor")
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/pages/"+idStr(homeID)+"/content", map[string]interface{}{
		"fields": []map[string]interface{}{{"section_id": titleID, "value": "Water for every season"}},
		"repeatables": []map[string]interface{}{{
			"key":   content.RepeatableStatsKey,
			"items": []map[string]string{{"label": "Wells", "value": "12"}, {"label": "", "value": ""}},
		}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save page: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	s.expectPublic(t, "/", "Water for every season", `data-target="12"`)
}

func (s *e2eSuite) testSettings(t *testing.T) {
	resp := s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/settings", map[string]interface{}{
		"settings": map[string]string{"site_name": "Harvest E2E", "contact_email": "hello@example.org"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update settings: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	s.expectPublic(t, "/about.html", "Harvest E2E", "mailto:hello@example.org")

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/settings", map[string]interface{}{
		"settings": map[string]string{"Bad Key": "x"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid key: expected 400, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testContact(t *testing.T) {
	resp := s.mustRequestJSON(t, s.public, http.MethodPost, "/api/contact", map[string]interface{}{
		"name": "Grace", "email": "grace@example.org", "subject": "Visit", "message": "Can we visit a site?",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("contact: status %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/messages?filter=unread", nil, nil)
	var listed struct {
		Messages []db.ContactMessage `json:"messages"`
	}
	decodeJSON(t, resp, &listed)
	if len(listed.Messages) != 1 {
		t.Fatalf("expected 1 unread message, got %d", len(listed.Messages))
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/messages/"+idStr(listed.Messages[0].ID)+"/read",
		map[string]interface{}{"read": true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mark read: status %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/dashboard", nil, nil)
	var dash struct {
		Dashboard struct {
			Messages       int64 `json:"messages"`
			UnreadMessages int64 `json:"unread_messages"`
			News           int64 `json:"news"`
		} `json:"dashboard"`
	}
	decodeJSON(t, resp, &dash)
	if dash.Dashboard.Messages != 1 || dash.Dashboard.UnreadMessages != 0 || dash.Dashboard.News != 1 {
		t.Fatalf("unexpected dashboard %+v", dash.Dashboard)
	}
}

func (s *e2eSuite) testUploads(t *testing.T) {
	resp := s.uploadTestImage(t)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var uploadResp struct {
		Success int `json:"success"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &uploadResp)
	if uploadResp.Success != 1 || !strings.HasPrefix(uploadResp.Data.URL, "/static/uploads/team/") {
		t.Fatalf("unexpected upload response: %+v", uploadResp)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, uploadResp.Data.URL, nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("uploaded file not served: %d", resp.StatusCode)
	}
}

func (s *e2eSuite) uploadTestImage(t *testing.T) *http.Response {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("bucket", storage.BucketTeam); err != nil {
		t.Fatalf("failed to write bucket: %v", err)
	}
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, "image", "member.png"))
	partHeader.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(buf.Bytes()); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	headers := map[string]string{
		"Content-Type": writer.FormDataContentType(),
	}
	return s.mustRequest(t, s.admin, http.MethodPost, "/admin/api/uploads", body, headers)
}

func (s *e2eSuite) expectPublic(t *testing.T, path string, expect ...string) {
	t.Helper()
	resp := s.mustRequest(t, s.public, http.MethodGet, path, nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, resp.StatusCode)
	}
	body := readBody(t, resp)
	for _, want := range expect {
		if !strings.Contains(body, want) {
			t.Fatalf("%s: response does not contain %q", path, want)
		}
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
