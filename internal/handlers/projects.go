package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// ProjectHandler exposes project CRUD endpoints.
type ProjectHandler struct {
	projects *services.ProjectService
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name               string    `json:"name" validate:"required,max=255"`
	ClientName         string    `json:"client_name" validate:"required,max=255"`
	Location           string    `json:"location" validate:"required,max=255"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	Budget             float64   `json:"budget" validate:"gte=0"`
	ProgressPercentage int       `json:"progress_percentage"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required"`
}

type updateProjectRequest struct {
	Name               *string    `json:"name"`
	ClientName         *string    `json:"client_name"`
	Location           *string    `json:"location"`
	Description        *string    `json:"description"`
	Status             *string    `json:"status"`
	Budget             *float64   `json:"budget"`
	ProgressPercentage *int       `json:"progress_percentage"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
}

// Create registers a new project.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Create(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.CreateProjectInput{
		Name:               req.Name,
		ClientName:         req.ClientName,
		Location:           req.Location,
		Description:        req.Description,
		Status:             req.Status,
		Budget:             req.Budget,
		ProgressPercentage: req.ProgressPercentage,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, project)
}

// List returns projects, optionally filtered by status and archived flag.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(requestContext(c), services.ListProjectsInput{
		Status:          c.Query("status"),
		IncludeArchived: parseBoolQuery(c, "include_archived"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, projects)
}

// Get returns a single project.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// Update applies partial changes to a project.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Update(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"), services.UpdateProjectInput{
		Name:               req.Name,
		ClientName:         req.ClientName,
		Location:           req.Location,
		Description:        req.Description,
		Status:             req.Status,
		Budget:             req.Budget,
		ProgressPercentage: req.ProgressPercentage,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// Archive toggles the archived flag. `POST /:id/archive?restore=true` restores.
func (h *ProjectHandler) Archive(c *gin.Context) {
	archived := !parseBoolQuery(c, "restore")
	project, err := h.projects.SetArchived(requestContext(c), c.GetString(middleware.CtxUserIDKey), strings.TrimSpace(c.Param("id")), archived)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// Delete removes a project.
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
