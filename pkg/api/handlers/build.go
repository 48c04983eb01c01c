package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/previewlabs/preview-backend/pkg/api/dtos"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/services"
)

type BuildHandler struct {
	PreviewService *services.PreviewService
}

func NewBuildHandler(previewService *services.PreviewService) *BuildHandler {
	return &BuildHandler{PreviewService: previewService}
}

// Create godoc
// @Summary  Create a build attempt for a pull request and resolve it
// @Accept   json
// @Produce  json
// @Param    request body dtos.CreateBuildRequest true "build attempt"
// @Router   /builds [post]
func (h *BuildHandler) Create(c *gin.Context) {
	var request dtos.CreateBuildRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	build, deploys, err := h.PreviewService.CreateBuild(
		c.Request.Context(),
		request.Repo,
		request.Branch,
		request.PRNumber,
		request.OptionalSets,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "buildId": build.ID, "deploys": deploys})
}

// Resolve godoc
// @Summary  Re-resolve and build an existing attempt (idempotent)
// @Produce  json
// @Param    id path string true "build id"
// @Router   /builds/{id}/resolve [post]
func (h *BuildHandler) Resolve(c *gin.Context) {
	buildID, ok := parseBuildID(c)
	if !ok {
		return
	}
	deploys, err := h.PreviewService.Trigger(c.Request.Context(), buildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "deploys": deploys})
}

func (h *BuildHandler) GetAll(c *gin.Context) {
	builds, err := h.PreviewService.ListBuilds()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"builds": builds})
}

func (h *BuildHandler) GetByID(c *gin.Context) {
	buildID, ok := parseBuildID(c)
	if !ok {
		return
	}
	build, err := h.PreviewService.GetBuild(buildID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"build": build})
}

func (h *BuildHandler) GetDeploys(c *gin.Context) {
	buildID, ok := parseBuildID(c)
	if !ok {
		return
	}
	deploys, err := h.PreviewService.GetDeploys(buildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deploys": deploys})
}

// AddOverride godoc
// @Summary  Apply a comment-driven service override and re-resolve
// @Accept   json
// @Produce  json
// @Param    id path string true "build id"
// @Param    request body dtos.CreateOverrideRequest true "override"
// @Router   /builds/{id}/overrides [post]
func (h *BuildHandler) AddOverride(c *gin.Context) {
	buildID, ok := parseBuildID(c)
	if !ok {
		return
	}
	var request dtos.CreateOverrideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.PreviewService.AddOverride(c.Request.Context(), buildID, &entities.BranchOverride{
		ServiceName: request.ServiceName,
		Branch:      request.Branch,
		Tag:         request.Tag,
		Enabled:     request.Enabled,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

// Teardown godoc
// @Summary  Tear down a preview environment
// @Produce  json
// @Param    id path string true "build id"
// @Router   /builds/{id} [delete]
func (h *BuildHandler) Teardown(c *gin.Context) {
	buildID, ok := parseBuildID(c)
	if !ok {
		return
	}
	if err := h.PreviewService.Teardown(c.Request.Context(), buildID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func parseBuildID(c *gin.Context) (uuid.UUID, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return uuid.Nil, false
	}
	buildID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return uuid.Nil, false
	}
	return buildID, true
}
