package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/storage"
)

var errNoFile = errors.New("no file uploaded")

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondInternal logs err and responds with a generic 500.
func respondInternal(c *gin.Context, message string, err error) {
	c.Error(err)
	slog.ErrorContext(c.Request.Context(), message, "error", err, "path", c.FullPath())
	respondError(c, http.StatusInternalServerError, message)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// idParam parses :key and responds 400 when it is not a positive integer.
func idParam(c *gin.Context, key string) (uint, bool) {
	id, err := parseUintParam(c, key)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

// formFile opens the multipart file under field. The returned closer must be
// called once the upload is done.
func formFile(c *gin.Context, field string) (storage.File, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return storage.File{}, func() {}, errNoFile
		}
		return storage.File{}, func() {}, err
	}
	return openFileHeader(header)
}

func openFileHeader(header *multipart.FileHeader) (storage.File, func(), error) {
	f, err := header.Open()
	if err != nil {
		return storage.File{}, func() {}, err
	}
	return storage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}
