package handler

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/storage"
)

// UploadImage stores the multipart "image" in the bucket named by the
// "bucket" form value, defaulting to projects.
func (a *API) UploadImage(c *gin.Context) {
	bucket := c.DefaultPostForm("bucket", storage.BucketProjects)
	if !slices.Contains(storage.MediaBuckets, bucket) || bucket == storage.BucketNewsAttachments {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown bucket", "success": 0})
		return
	}

	file, closeFile, err := formFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image uploaded", "success": 0})
		return
	}
	defer closeFile()

	stored, err := storage.UploadImage(c.Request.Context(), a.objects, bucket, file)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrEmptyFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only image files can be uploaded", "success": 0})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file", "success": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "uploaded",
		"data": gin.H{
			"filePath": stored.Path,
			"url":      stored.URL,
		},
	})
}
