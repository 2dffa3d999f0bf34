package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/service"
)

// HealthCheck reports whether the database is reachable.
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

// GetSettings returns the site settings as a key/value map.
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.Map()
	if err != nil {
		respondInternal(c, "failed to load settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type settingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// UpdateSettings upserts the posted settings.
func (a *API) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if !bindJSON(c, &req, "invalid settings payload") {
		return
	}
	if err := a.settings.Update(req.Settings); err != nil {
		if errors.Is(err, service.ErrInvalidSettingKey) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondInternal(c, "failed to save settings", err)
		return
	}
	a.GetSettings(c)
}

// GetDashboard returns the admin overview counters.
func (a *API) GetDashboard(c *gin.Context) {
	stats, err := a.dashboard.Overview(c.Request.Context(), a.now())
	if err != nil {
		respondInternal(c, "failed to load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": stats})
}
