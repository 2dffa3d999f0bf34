package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/content"
	"github.com/harvestcms/internal/storage"
	"github.com/invopop/jsonschema"
)

// pageSummary is the listing entry of a page.
type pageSummary struct {
	ID        uint   `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	HeroImage string `json:"hero_image_url"`
	Editable  bool   `json:"editable"`
	UpdatedAt string `json:"updated_at"`
	Stale     bool   `json:"stale"`
}

func (a *API) pageSummaries(c *gin.Context) ([]pageSummary, error) {
	ctx := c.Request.Context()
	pages, err := a.pages.ListPages(ctx)
	if err != nil {
		return nil, err
	}
	stale, err := a.pages.StalePageIDs(ctx, content.StaleCutoff(a.now()))
	if err != nil {
		return nil, err
	}
	out := make([]pageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageSummary{
			ID:        p.ID,
			Slug:      p.Slug,
			Title:     p.Title,
			HeroImage: p.HeroImageURL,
			Editable:  a.registry.Editable(p.Slug),
			UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
			Stale:     stale[p.ID],
		})
	}
	return out, nil
}

// ListPages returns every page with its editability and staleness.
func (a *API) ListPages(c *gin.Context) {
	summaries, err := a.pageSummaries(c)
	if err != nil {
		respondInternal(c, "failed to load pages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": summaries})
}

// GetPageEditor returns the editor form of a page.
func (a *API) GetPageEditor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	form, err := a.editor.Open(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, content.ErrPageNotFound) {
			respondError(c, http.StatusNotFound, "page not found")
			return
		}
		respondInternal(c, "failed to open editor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

// ShowPageEditor renders the section editor of a page.
func (a *API) ShowPageEditor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderAdmin(c, http.StatusBadRequest, "panel.html", "pages", gin.H{"title": "Pages", "error": "Invalid page id"})
		return
	}
	form, err := a.editor.Open(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, content.ErrPageNotFound) {
			a.renderAdmin(c, http.StatusNotFound, "panel.html", "pages", gin.H{"title": "Pages", "error": "Page not found"})
			return
		}
		a.panelError(c, "pages", "Failed to load page", err)
		return
	}
	a.renderAdmin(c, http.StatusOK, "page_editor.html", "pages", gin.H{
		"title": "Edit " + form.Title,
		"form":  form,
	})
}

// SavePageContent applies an editor submission. It accepts either a JSON
// body or a multipart form with the submission in the "content" field and an
// optional "hero_image" file.
func (a *API) SavePageContent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var sub content.Submission
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if raw := c.PostForm("content"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &sub); err != nil {
				respondError(c, http.StatusBadRequest, "invalid content payload")
				return
			}
		}
		file, closeFile, err := formFile(c, "hero_image")
		switch {
		case err == nil:
			defer closeFile()
			sub.HeroImage = &file
		case !errors.Is(err, errNoFile):
			respondError(c, http.StatusBadRequest, "invalid hero image upload")
			return
		}
	} else if !bindJSON(c, &sub, "invalid content payload") {
		return
	}

	result, err := a.editor.Save(c.Request.Context(), id, sub)
	if err != nil {
		a.respondSaveError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (a *API) respondSaveError(c *gin.Context, result *content.SaveResult, err error) {
	if errors.Is(err, content.ErrPageNotFound) {
		respondError(c, http.StatusNotFound, "page not found")
		return
	}

	var saveErr *content.SaveError
	if !errors.As(err, &saveErr) {
		respondInternal(c, "failed to save page", err)
		return
	}

	body := gin.H{"error": saveErr.Error(), "step": saveErr.Step, "key": saveErr.Key}
	if result != nil {
		body["result"] = result
	}

	switch {
	case errors.Is(err, content.ErrUnknownField),
		errors.Is(err, content.ErrFieldTypeMismatch),
		errors.Is(err, content.ErrInvalidLink),
		errors.Is(err, content.ErrHeroNotSupported),
		errors.Is(err, storage.ErrNotImage),
		errors.Is(err, storage.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, content.ErrSectionNotFound) && result == nil:
		c.JSON(http.StatusConflict, body)
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, body)
	}
}

var submissionSchema = jsonschema.Reflect(&content.Submission{})

// SubmissionSchema describes the JSON accepted by SavePageContent.
func (a *API) SubmissionSchema(c *gin.Context) {
	c.JSON(http.StatusOK, submissionSchema)
}
