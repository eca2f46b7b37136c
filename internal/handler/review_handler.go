package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/middleware"
	"github.com/quillpress/quillpress-backend/internal/service"
	"github.com/quillpress/quillpress-backend/pkg/ginutil"
)

// ReviewHandler handles the editorial review workflow
type ReviewHandler struct {
	workflow service.WorkflowService
	history  *service.HistoryService
	perms    *service.PermissionService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(workflow service.WorkflowService, history *service.HistoryService,
	perms *service.PermissionService) *ReviewHandler {
	return &ReviewHandler{workflow: workflow, history: history, perms: perms}
}

type reviewRequest struct {
	Comment string `json:"comment"`
}

// ListPending godoc
// @Summary      List posts awaiting review
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number"  default(1)
// @Param        limit  query  int  false  "Items per page"  default(20)
// @Success      200  {object}  common.APIResponse{data=[]domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Router       /review/pending [get]
func (h *ReviewHandler) ListPending(c *gin.Context) {
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	data, meta, err := h.workflow.ListUnderReview(page, limit, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, meta)
}

// SubmitPost godoc
// @Summary      Submit a draft for review
// @Description  Creator only; moves DRAFT to UNDER_REVIEW
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/submit [post]
func (h *ReviewHandler) SubmitPost(c *gin.Context) {
	h.transition(c, h.workflow.Submit, "submit")
}

// UnsubmitPost godoc
// @Summary      Withdraw a post from review
// @Description  Creator only; moves UNDER_REVIEW back to DRAFT
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/unsubmit [post]
func (h *ReviewHandler) UnsubmitPost(c *gin.Context) {
	h.transition(c, h.workflow.Unsubmit, "unsubmit")
}

// RevertPost godoc
// @Summary      Return a rejected post to draft
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/revert [post]
func (h *ReviewHandler) RevertPost(c *gin.Context) {
	h.transition(c, h.workflow.RevertToDraft, "revert")
}

// ApprovePost godoc
// @Summary      Approve a submission
// @Description  Admin only; publishes the post
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int            true   "Post ID"
// @Param        request  body  reviewRequest  false  "Optional review comment"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/approve [post]
func (h *ReviewHandler) ApprovePost(c *gin.Context) {
	h.review(c, h.workflow.Approve, "approve", false)
}

// RejectPost godoc
// @Summary      Reject a submission
// @Description  Admin only; requires a review comment
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int            true  "Post ID"
// @Param        request  body  reviewRequest  true  "Review comment"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      400  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/reject [post]
func (h *ReviewHandler) RejectPost(c *gin.Context) {
	h.review(c, h.workflow.Reject, "reject", true)
}

// GetHistory godoc
// @Summary      Post audit trail
// @Description  Lists workflow history entries, newest first
// @Tags         review
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=[]domain.PostHistory}
// @Failure      403  {object}  common.APIResponse
// @Router       /posts/{id}/history [get]
func (h *ReviewHandler) GetHistory(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	data, err := h.history.ListForPost(id, middleware.GetPrincipal(c), h.perms)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

func (h *ReviewHandler) transition(c *gin.Context,
	op func(uint64, domain.Principal) (*domain.PostResponse, error), action string) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	data, err := op(id, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	middleware.CountTransition(action)
	common.SuccessResponse(c, data, nil)
}

func (h *ReviewHandler) review(c *gin.Context,
	op func(uint64, string, domain.Principal) (*domain.PostResponse, error), action string, commentRequired bool) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && commentRequired {
		common.AbortWithError(c, common.Validation("request body required"))
		return
	}

	data, err := op(id, req.Comment, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	middleware.CountTransition(action)
	common.SuccessResponse(c, data, nil)
}
