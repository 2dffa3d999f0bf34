package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/service"
)

func (a *API) respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondError(c, http.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrProjectTitleRequired):
		respondError(c, http.StatusBadRequest, "project title is required")
	case errors.Is(err, service.ErrProgramNotFound):
		respondError(c, http.StatusBadRequest, "program not found")
	default:
		respondInternal(c, "failed to save project", err)
	}
}

// GetProjects lists projects with their programs.
func (a *API) GetProjects(c *gin.Context) {
	projects, err := a.projects.List()
	if err != nil {
		respondInternal(c, "failed to load projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns one project.
func (a *API) GetProject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	project, err := a.projects.Get(id)
	if err != nil {
		a.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// CreateProject stores a new project.
func (a *API) CreateProject(c *gin.Context) {
	var input service.ProjectInput
	if !bindJSON(c, &input, "invalid project payload") {
		return
	}
	project, err := a.projects.Create(input)
	if err != nil {
		a.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// UpdateProject replaces a project.
func (a *API) UpdateProject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.ProjectInput
	if !bindJSON(c, &input, "invalid project payload") {
		return
	}
	project, err := a.projects.Update(id, input)
	if err != nil {
		a.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// DeleteProject removes a project.
func (a *API) DeleteProject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.projects.Delete(id); err != nil {
		a.respondProjectError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPrograms lists programs, seeding the defaults on first use.
func (a *API) GetPrograms(c *gin.Context) {
	if _, err := a.programs.SeedDefaults(); err != nil {
		respondInternal(c, "failed to seed programs", err)
		return
	}
	programs, err := a.programs.List()
	if err != nil {
		respondInternal(c, "failed to load programs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"programs": programs})
}
