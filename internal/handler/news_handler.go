package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/service"
	"github.com/harvestcms/internal/storage"
)

func (a *API) respondNewsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNewsNotFound):
		respondError(c, http.StatusNotFound, "news post not found")
	case errors.Is(err, service.ErrAttachmentNotFound):
		respondError(c, http.StatusNotFound, "attachment not found")
	case errors.Is(err, service.ErrNewsTitleRequired):
		respondError(c, http.StatusBadRequest, "news title is required")
	case errors.Is(err, storage.ErrEmptyFile):
		respondError(c, http.StatusBadRequest, "file is empty")
	default:
		respondInternal(c, "failed to save news", err)
	}
}

// GetNewsPosts lists every news post.
func (a *API) GetNewsPosts(c *gin.Context) {
	posts, err := a.news.List()
	if err != nil {
		respondInternal(c, "failed to load news", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": posts})
}

// GetNewsPost returns one post with attachments.
func (a *API) GetNewsPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, err := a.news.Get(id)
	if err != nil {
		a.respondNewsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": post})
}

// CreateNewsPost stores a post.
func (a *API) CreateNewsPost(c *gin.Context) {
	var input service.NewsInput
	if !bindJSON(c, &input, "invalid news payload") {
		return
	}
	post, err := a.news.Create(input)
	if err != nil {
		a.respondNewsError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"news": post})
}

// UpdateNewsPost replaces a post.
func (a *API) UpdateNewsPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.NewsInput
	if !bindJSON(c, &input, "invalid news payload") {
		return
	}
	post, err := a.news.Update(id, input)
	if err != nil {
		a.respondNewsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": post})
}

// DeleteNewsPost removes a post.
func (a *API) DeleteNewsPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.news.Delete(id); err != nil {
		a.respondNewsError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadNewsAttachment attaches the multipart "file" to a post.
func (a *API) UploadNewsAttachment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer closeFile()

	attachment, err := a.news.AddAttachment(c.Request.Context(), id, file)
	if err != nil {
		a.respondNewsError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attachment": attachment})
}

// DeleteNewsAttachment unlinks an attachment from a post.
func (a *API) DeleteNewsAttachment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := idParam(c, "attachmentID")
	if !ok {
		return
	}
	if err := a.news.RemoveAttachment(id, attachmentID); err != nil {
		a.respondNewsError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
