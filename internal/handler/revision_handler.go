package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/middleware"
	"github.com/quillpress/quillpress-backend/internal/service"
	"github.com/quillpress/quillpress-backend/pkg/ginutil"
)

// RevisionHandler handles revision workflow for published posts
type RevisionHandler struct {
	revisions service.RevisionService
}

// NewRevisionHandler creates a new RevisionHandler
func NewRevisionHandler(revisions service.RevisionService) *RevisionHandler {
	return &RevisionHandler{revisions: revisions}
}

// StartRevision godoc
// @Summary      Start a revision of a published post
// @Description  Idempotent: returns the existing active revision if one exists
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      201  {object}  common.APIResponse{data=domain.Revision}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id}/revisions [post]
func (h *RevisionHandler) StartRevision(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	data, err := h.revisions.StartRevision(postID, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.CreatedResponse(c, data)
}

// GetActiveRevision godoc
// @Summary      Get the active revision of a post
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.Revision}
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id}/revisions/active [get]
func (h *RevisionHandler) GetActiveRevision(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	data, err := h.revisions.GetActiveRevision(postID, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// ListRevisions godoc
// @Summary      List all revisions of a post
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=[]domain.Revision}
// @Failure      403  {object}  common.APIResponse
// @Router       /posts/{id}/revisions [get]
func (h *RevisionHandler) ListRevisions(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	data, err := h.revisions.ListRevisions(postID, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// GetRevision godoc
// @Summary      Get a revision by ID
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Revision ID"
// @Success      200  {object}  common.APIResponse{data=domain.Revision}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /revisions/{id} [get]
func (h *RevisionHandler) GetRevision(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid revision id"))
		return
	}

	data, err := h.revisions.GetRevision(id, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// ListMyRevisions godoc
// @Summary      List revisions created by the caller
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse{data=[]domain.Revision}
// @Router       /revisions/mine [get]
func (h *RevisionHandler) ListMyRevisions(c *gin.Context) {
	data, err := h.revisions.ListMyRevisions(middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// UpdateRevision godoc
// @Summary      Update an active revision
// @Description  Partial update of the staged copy; the live post is untouched
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                           true  "Revision ID"
// @Param        request  body  domain.UpdateRevisionRequest  true  "Fields to change"
// @Success      200  {object}  common.APIResponse{data=domain.Revision}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /revisions/{id} [patch]
func (h *RevisionHandler) UpdateRevision(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid revision id"))
		return
	}

	var req domain.UpdateRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, common.Validation(err.Error()))
		return
	}

	data, err := h.revisions.UpdateRevision(id, &req, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// SubmitRevision godoc
// @Summary      Submit a revision for review
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Revision ID"
// @Success      200  {object}  common.APIResponse{data=domain.Revision}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /revisions/{id}/submit [post]
func (h *RevisionHandler) SubmitRevision(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid revision id"))
		return
	}

	data, err := h.revisions.SubmitRevision(id, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// PublishRevision godoc
// @Summary      Publish a revision
// @Description  Merges the revision onto its post; admins and editors only
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Revision ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /revisions/{id}/publish [post]
func (h *RevisionHandler) PublishRevision(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid revision id"))
		return
	}

	data, err := h.revisions.PublishRevision(id, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	middleware.CountTransition("publish_revision")
	common.SuccessResponse(c, data, nil)
}

// DiscardRevision godoc
// @Summary      Discard a revision
// @Description  Marks the revision DISCARDED; it is kept for audit
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Revision ID"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /revisions/{id} [delete]
func (h *RevisionHandler) DiscardRevision(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid revision id"))
		return
	}

	if err := h.revisions.DiscardRevision(id, middleware.GetPrincipal(c)); err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"discarded": true}, nil)
}
