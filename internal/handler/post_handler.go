package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/middleware"
	"github.com/quillpress/quillpress-backend/internal/service"
	"github.com/quillpress/quillpress-backend/pkg/ginutil"
)

// PostHandler handles HTTP requests for posts
type PostHandler struct {
	posts    service.PostService
	workflow service.WorkflowService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts service.PostService, workflow service.WorkflowService) *PostHandler {
	return &PostHandler{posts: posts, workflow: workflow}
}

// ListPosts godoc
// @Summary      List posts
// @Description  Lists posts filtered by status, category or author
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        status       query     string  false  "Post status"
// @Param        category_id  query     int     false  "Category ID"
// @Param        author_id    query     int     false  "Author ID"
// @Success      200  {object}  common.APIResponse{data=[]domain.PostResponse}
// @Failure      500  {object}  common.APIResponse
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	filter := domain.PostListFilter{
		CategoryID: ginutil.QueryUint64(c, "category_id"),
		AuthorID:   ginutil.QueryUint64(c, "author_id"),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.PostStatus(raw)
		if !status.Valid() {
			common.AbortWithError(c, common.Validation("unknown status "+raw))
			return
		}
		filter.Status = status
	} else {
		// anonymous readers only see published content
		filter.Status = domain.StatusPublished
	}

	data, err := h.posts.ListPosts(filter)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// ListDashboard godoc
// @Summary      Editorial post listing
// @Description  Paginated listing with combinable status, author and title filters
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        status     query  string  false  "Post status"
// @Param        author_id  query  int     false  "Author ID"
// @Param        title      query  string  false  "Title substring, case-insensitive"
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        limit      query  int     false  "Items per page"  default(20)
// @Success      200  {object}  common.APIResponse{data=[]domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Router       /dashboard/posts [get]
func (h *PostHandler) ListDashboard(c *gin.Context) {
	filter := domain.PostListFilter{
		AuthorID:      ginutil.QueryUint64(c, "author_id"),
		CreatedByID:   ginutil.QueryUint64(c, "created_by"),
		TitleContains: c.Query("title"),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.PostStatus(raw)
		if !status.Valid() {
			common.AbortWithError(c, common.Validation("unknown status "+raw))
			return
		}
		filter.Status = status
	}
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	data, meta, err := h.posts.ListDashboard(filter, page, limit, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, meta)
}

// SearchPosts godoc
// @Summary      Search published posts
// @Description  Matches keyword against title, content, excerpt and category names
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        q  query  string  true  "Search keyword"
// @Success      200  {object}  common.APIResponse{data=[]domain.PostResponse}
// @Router       /posts/search [get]
func (h *PostHandler) SearchPosts(c *gin.Context) {
	data, err := h.posts.SearchPublished(c.Query("q"))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	data, err := h.posts.GetPost(id)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// GetPostBySlug godoc
// @Summary      Get post by slug
// @Description  Reader-facing lookup; counts a deduplicated view
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        slug  path  string  true  "Post slug"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/slug/{slug} [get]
func (h *PostHandler) GetPostBySlug(c *gin.Context) {
	data, err := h.posts.GetPostBySlug(c.Param("slug"), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.CreatePostRequest  true  "Post payload"
// @Success      201  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      400  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, common.Validation(err.Error()))
		return
	}

	data, err := h.posts.CreatePost(&req, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.CreatedResponse(c, data)
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Partial update; include version for optimistic concurrency
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                       true  "Post ID"
// @Param        request  body  domain.UpdatePostRequest  true  "Fields to change"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id} [patch]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	var req domain.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.AbortWithError(c, common.Validation(err.Error()))
		return
	}

	data, err := h.posts.UpdatePost(id, &req, middleware.GetPrincipal(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Direct deletion; published posts require a deletion request
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.AbortWithError(c, common.Validation("invalid post id"))
		return
	}

	if err := h.posts.DeletePost(id, middleware.GetPrincipal(c)); err != nil {
		common.AbortWithError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// PublishPost godoc
// @Summary      Publish a post directly
// @Description  Bypasses review; admins and editors only
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/publish [post]
func (h *PostHandler) PublishPost(c *gin.Context) {
	h.transition(c, h.workflow.Publish, "publish")
}

// UnpublishPost godoc
// @Summary      Unpublish a post
// @Description  Returns a published post to DRAFT; admins only
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/unpublish [post]
func (h *PostHandler) UnpublishPost(c *gin.Context) {
	h.transition(c, h.workflow.Unpublish, "unpublish")
}

// ArchivePost godoc
// @Summary      Archive a published post
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostResponse}
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/archive [post]
func (h *PostHandler) ArchivePost(c *gin.Context) {
	h.transition(c, h.workflow.Archive, "archive")
}

func (h *PostHandler) transition(c *gin.Context,
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
