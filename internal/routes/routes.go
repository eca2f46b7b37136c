package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/quillpress/quillpress-backend/internal/handler"
	"github.com/quillpress/quillpress-backend/internal/middleware"
	"github.com/quillpress/quillpress-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	postHandler *handler.PostHandler,
	reviewHandler *handler.ReviewHandler,
	revisionHandler *handler.RevisionHandler,
	deletionHandler *handler.DeletionRequestHandler,
	authHandler *handler.AuthHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")
	auth := middleware.JWTAuth(jwtManager)

	api.GET("/auth/me", auth, authHandler.GetCurrentUser)

	// Reader-facing endpoints (no auth required)
	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/search", postHandler.SearchPosts)
		posts.GET("/slug/:slug", postHandler.GetPostBySlug)
		posts.GET("/:id", postHandler.GetPost)

		// Authoring and workflow
		posts.POST("", auth, postHandler.CreatePost)
		posts.PATCH("/:id", auth, postHandler.UpdatePost)
		posts.DELETE("/:id", auth, postHandler.DeletePost)
		posts.POST("/:id/submit", auth, reviewHandler.SubmitPost)
		posts.POST("/:id/unsubmit", auth, reviewHandler.UnsubmitPost)
		posts.POST("/:id/revert", auth, reviewHandler.RevertPost)
		posts.POST("/:id/approve", auth, reviewHandler.ApprovePost)
		posts.POST("/:id/reject", auth, reviewHandler.RejectPost)
		posts.POST("/:id/publish", auth, postHandler.PublishPost)
		posts.POST("/:id/unpublish", auth, postHandler.UnpublishPost)
		posts.POST("/:id/archive", auth, postHandler.ArchivePost)
		posts.GET("/:id/history", auth, reviewHandler.GetHistory)

		// Revisions of a post
		posts.POST("/:id/revisions", auth, revisionHandler.StartRevision)
		posts.GET("/:id/revisions", auth, revisionHandler.ListRevisions)
		posts.GET("/:id/revisions/active", auth, revisionHandler.GetActiveRevision)

		// Mediated removal of published posts
		posts.POST("/:id/deletion-requests", auth, deletionHandler.RequestDeletion)
	}

	revisions := api.Group("/revisions", auth)
	{
		revisions.GET("/mine", revisionHandler.ListMyRevisions)
		revisions.GET("/:id", revisionHandler.GetRevision)
		revisions.PATCH("/:id", revisionHandler.UpdateRevision)
		revisions.DELETE("/:id", revisionHandler.DiscardRevision)
		revisions.POST("/:id/submit", revisionHandler.SubmitRevision)
		revisions.POST("/:id/publish", revisionHandler.PublishRevision)
	}

	deletionRequests := api.Group("/deletion-requests", auth)
	{
		deletionRequests.GET("/pending", deletionHandler.ListPending)
		deletionRequests.GET("/mine", deletionHandler.ListMine)
		deletionRequests.POST("/:id/approve", deletionHandler.ApproveRequest)
		deletionRequests.POST("/:id/deny", deletionHandler.DenyRequest)
	}

	dashboard := api.Group("/dashboard", auth)
	{
		dashboard.GET("/posts", postHandler.ListDashboard)
		dashboard.GET("/review/pending", reviewHandler.ListPending)
	}
}
