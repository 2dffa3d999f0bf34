package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/service"
)

func (a *API) respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamMemberNotFound):
		respondError(c, http.StatusNotFound, "team member not found")
	case errors.Is(err, service.ErrTeamNameRequired):
		respondError(c, http.StatusBadRequest, "team member name is required")
	default:
		respondInternal(c, "failed to save team member", err)
	}
}

// GetTeamMembers lists the team in display order.
func (a *API) GetTeamMembers(c *gin.Context) {
	members, err := a.team.List()
	if err != nil {
		respondInternal(c, "failed to load team", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": members})
}

// CreateTeamMember stores a member.
func (a *API) CreateTeamMember(c *gin.Context) {
	var input service.TeamMemberInput
	if !bindJSON(c, &input, "invalid team member payload") {
		return
	}
	member, err := a.team.Create(input)
	if err != nil {
		a.respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// UpdateTeamMember replaces a member.
func (a *API) UpdateTeamMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.TeamMemberInput
	if !bindJSON(c, &input, "invalid team member payload") {
		return
	}
	member, err := a.team.Update(id, input)
	if err != nil {
		a.respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}

// DeleteTeamMember removes a member.
func (a *API) DeleteTeamMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.team.Delete(id); err != nil {
		a.respondTeamError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
