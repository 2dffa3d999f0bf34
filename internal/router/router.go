package router

import (
	"encoding/json"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/handler"
	"github.com/harvestcms/internal/ratelimit"
)

// Options configures the engine.
type Options struct {
	SessionSecret string
	TemplateDir   string
	PublicDir     string
	// UploadDir is served under UploadURLPath when non-empty; it is left
	// empty when media live in an object store.
	UploadDir         string
	UploadURLPath     string
	FormRatePerMinute int
}

// SetupRouter configures the Gin engine and routes.
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 7 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions("harvestcms_session", store))

	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"json": func(v any) (template.JS, error) {
			raw, err := json.Marshal(v)
			return template.JS(raw), err
		},
	})
	r.LoadHTMLGlob(filepath.Join(opts.TemplateDir, "*.html"))

	if opts.UploadDir != "" {
		urlPath := "/" + strings.Trim(opts.UploadURLPath, "/")
		r.Static(urlPath, opts.UploadDir)
	}
	if opts.PublicDir != "" {
		r.Static("/assets", filepath.Join(opts.PublicDir, "assets"))
		r.Static("/css", filepath.Join(opts.PublicDir, "css"))
		r.Static("/js", filepath.Join(opts.PublicDir, "js"))
	}

	r.GET("/healthz", api.HealthCheck)

	r.GET("/", api.ShowHome)
	r.NoRoute(api.ShowPublicPage)

	forms := ratelimit.NewLimiter(opts.FormRatePerMinute, time.Minute)
	public := r.Group("/api")
	{
		public.POST("/contact", handler.RateLimit(forms), api.SubmitContact)
		public.POST("/newsletter", handler.RateLimit(forms), api.Subscribe)
		public.GET("/news/:id", api.GetNewsArticle)
	}

	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", func(c *gin.Context) {
				c.Redirect(http.StatusFound, "/admin/panels/dashboard")
			})
			auth.GET("/panels/:name", api.ServePanel)
			auth.GET("/pages/:id/edit", api.ShowPageEditor)

			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/pages", api.ListPages)
				apiGroup.GET("/pages/submission-schema", api.SubmissionSchema)
				apiGroup.GET("/pages/:id/editor", api.GetPageEditor)
				apiGroup.PUT("/pages/:id/content", api.SavePageContent)

				apiGroup.GET("/projects", api.GetProjects)
				apiGroup.GET("/projects/:id", api.GetProject)
				apiGroup.POST("/projects", api.CreateProject)
				apiGroup.PUT("/projects/:id", api.UpdateProject)
				apiGroup.DELETE("/projects/:id", api.DeleteProject)
				apiGroup.GET("/programs", api.GetPrograms)

				apiGroup.GET("/news", api.GetNewsPosts)
				apiGroup.GET("/news/:id", api.GetNewsPost)
				apiGroup.POST("/news", api.CreateNewsPost)
				apiGroup.PUT("/news/:id", api.UpdateNewsPost)
				apiGroup.DELETE("/news/:id", api.DeleteNewsPost)
				apiGroup.POST("/news/:id/attachments", api.UploadNewsAttachment)
				apiGroup.DELETE("/news/:id/attachments/:attachmentID", api.DeleteNewsAttachment)

				apiGroup.GET("/team", api.GetTeamMembers)
				apiGroup.POST("/team", api.CreateTeamMember)
				apiGroup.PUT("/team/:id", api.UpdateTeamMember)
				apiGroup.DELETE("/team/:id", api.DeleteTeamMember)

				apiGroup.GET("/messages", api.GetMessages)
				apiGroup.GET("/messages/:id", api.GetMessage)
				apiGroup.PUT("/messages/:id/read", api.SetMessageRead)
				apiGroup.DELETE("/messages/:id", api.DeleteMessage)

				apiGroup.GET("/subscribers", api.GetSubscribers)
				apiGroup.DELETE("/subscribers/:id", api.DeleteSubscriber)

				apiGroup.GET("/settings", api.GetSettings)
				apiGroup.PUT("/settings", api.UpdateSettings)
				apiGroup.GET("/dashboard", api.GetDashboard)

				apiGroup.POST("/uploads", api.UploadImage)
			}
		}
	}

	return r
}
