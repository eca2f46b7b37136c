package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/middleware"
	"github.com/quillpress/quillpress-backend/internal/service"
	"github.com/quillpress/quillpress-backend/pkg/ginutil"
)

// DeletionRequestHandler handles the approval flow for removing published posts
type DeletionRequestHandler struct {
	deletions service.DeletionService
}

// NewDeletionRequestHandler creates a new DeletionRequestHandler
func NewDeletionRequestHandler(deletions service.DeletionService) *DeletionRequestHandler {
	return &DeletionRequestHandler{deletions: deletions}
}

// RequestDeletion godoc
// @Summary      Request deletion of a published post
// @Tags         deletion-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                           true  "Post ID"
// @Param        request  body  domain.CreateDeletionRequest  true  "Reason for deletion"
// @Success      201  {object}  common.APIResponse{data=domain.DeletionRequest}
// @Failure      400  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/deletion-requests [post]
func (h *DeletionRequestHandler) RequestDeletion(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	var req domain.CreateDeletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, common.Validation(err.Error()))
		return
	}

	data, err := h.deletions.RequestDeletion(postID, req.Reason, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.CreatedResponse(c, data)
}

// ListPending godoc
// @Summary      List pending deletion requests
// @Description  Admins and editors only
// @Tags         deletion-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse{data=[]domain.DeletionRequest}
// @Failure      403  {object}  common.APIResponse
// @Router       /deletion-requests/pending [get]
func (h *DeletionRequestHandler) ListPending(c *gin.Context) {
	data, err := h.deletions.ListPending(middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// ListMine godoc
// @Summary      List deletion requests filed by the caller
// @Tags         deletion-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse{data=[]domain.DeletionRequest}
// @Router       /deletion-requests/mine [get]
func (h *DeletionRequestHandler) ListMine(c *gin.Context) {
	data, err := h.deletions.ListMyRequests(middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// ApproveRequest godoc
// @Summary      Approve a deletion request
// @Description  Deletes the post and its history; admins and editors only
// @Tags         deletion-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Request ID"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /deletion-requests/{id}/approve [post]
func (h *DeletionRequestHandler) ApproveRequest(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid request id"))
		return
	}

	if err := h.deletions.ApproveRequest(id, middleware.GetPrincipal(c)); err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"approved": true}, nil)
}

// DenyRequest godoc
// @Summary      Deny a deletion request
// @Description  Leaves the post untouched; admins and editors only
// @Tags         deletion-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Request ID"
// @Success      200  {object}  common.APIResponse{data=domain.DeletionRequest}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /deletion-requests/{id}/deny [post]
func (h *DeletionRequestHandler) DenyRequest(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid request id"))
		return
	}

	data, err := h.deletions.DenyRequest(id, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}
