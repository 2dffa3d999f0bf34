package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/content"
	"github.com/harvestcms/internal/service"
)

const defaultPublicPage = "index.html"

var publicPagePattern = regexp.MustCompile(`^[a-z0-9-]+\.html$`)

// ShowHome renders the homepage.
func (a *API) ShowHome(c *gin.Context) {
	a.renderPublicPage(c, defaultPublicPage)
}

// ShowPublicPage renders /<slug>.html for requests no other route matched.
func (a *API) ShowPublicPage(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	slug := strings.TrimPrefix(c.Request.URL.Path, "/")
	if !publicPagePattern.MatchString(slug) {
		c.String(http.StatusNotFound, "page not found")
		return
	}
	a.renderPublicPage(c, slug)
}

func (a *API) renderPublicPage(c *gin.Context, slug string) {
	ctx := c.Request.Context()
	markup, err := os.ReadFile(filepath.Join(a.publicDir, slug))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.String(http.StatusNotFound, "page not found")
			return
		}
		c.Error(err)
		c.String(http.StatusInternalServerError, "failed to load page")
		return
	}

	page, err := a.pages.PageBySlug(ctx, slug)
	if err != nil && !errors.Is(err, content.ErrPageNotFound) {
		slog.WarnContext(ctx, "page content unavailable, serving static markup", "slug", slug, "error", err)
		c.Data(http.StatusOK, "text/html; charset=utf-8", markup)
		return
	}

	builder := content.ViewFromPage(page, a.registry)
	if settings, err := a.settings.Map(); err == nil {
		builder.Settings(settings)
	} else {
		slog.WarnContext(ctx, "site settings unavailable", "error", err)
	}
	if projects, err := a.projects.Featured(service.FeaturedLimit); err == nil {
		builder.Feed(content.FeedProjects, content.ProjectCards(projects))
	} else {
		slog.WarnContext(ctx, "featured projects unavailable", "error", err)
	}
	if posts, err := a.news.Featured(service.FeaturedLimit); err == nil {
		builder.Feed(content.FeedNews, content.NewsCards(posts))
	} else {
		slog.WarnContext(ctx, "featured news unavailable", "error", err)
	}

	var buf bytes.Buffer
	if err := content.Render(bytes.NewReader(markup), builder.Build(), &buf); err != nil {
		slog.WarnContext(ctx, "render failed, serving static markup", "slug", slug, "error", err)
		c.Data(http.StatusOK, "text/html; charset=utf-8", markup)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// SubmitContact stores a message from the public contact form.
func (a *API) SubmitContact(c *gin.Context) {
	var input service.ContactInput
	if err := c.ShouldBind(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid contact form")
		return
	}
	if _, err := a.messages.Submit(input); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageIncomplete), errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondInternal(c, "Sorry, there was an error sending your message. Please try again later.", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thank you for your message! We will get back to you soon."})
}

type subscribeRequest struct {
	Email string `json:"email" form:"email"`
}

// Subscribe adds an address to the newsletter list.
func (a *API) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid newsletter form")
		return
	}
	if _, err := a.subscribers.Subscribe(req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadySubscribed):
			respondError(c, http.StatusConflict, "You are already subscribed to our newsletter!")
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondInternal(c, "Sorry, there was an error subscribing. Please try again later.", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thank you for subscribing to our newsletter!"})
}

// GetNewsArticle returns a published post with its rendered body.
func (a *API) GetNewsArticle(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	article, err := a.news.Article(id)
	if err != nil {
		if errors.Is(err, service.ErrNewsNotFound) {
			respondError(c, http.StatusNotFound, "news post not found")
			return
		}
		respondInternal(c, "failed to load news post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": article.Post, "html": article.HTML})
}
