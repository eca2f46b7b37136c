package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/repository"
	"github.com/quillpress/quillpress-backend/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// slugRetryLimit caps the numeric-suffix search for a free slug
const slugRetryLimit = 100

// PostService business logic for canonical content items
type PostService interface {
	CreatePost(req *domain.CreatePostRequest, p domain.Principal) (*domain.PostResponse, error)
	GetPost(id uint64) (*domain.PostResponse, error)
	// GetPostBySlug also counts a reader view, deduplicated per IP per day
	GetPostBySlug(slug, ip, userAgent string) (*domain.PostResponse, error)
	ListPosts(filter domain.PostListFilter) ([]*domain.PostResponse, error)
	ListDashboard(filter domain.PostListFilter, page, limit int, p domain.Principal) ([]*domain.PostResponse, *common.Meta, error)
	SearchPublished(keyword string) ([]*domain.PostResponse, error)
	UpdatePost(id uint64, req *domain.UpdatePostRequest, p domain.Principal) (*domain.PostResponse, error)
	DeletePost(id uint64, p domain.Principal) error
}

type postService struct {
	db         *gorm.DB
	posts      repository.PostRepository
	authors    repository.AuthorRepository
	categories repository.CategoryRepository
	history    *HistoryService
	perms      *PermissionService
	redis      *goredis.Client // nil-safe: falls back to the view table
}

// NewPostService creates a new PostService
func NewPostService(db *gorm.DB, posts repository.PostRepository,
	authors repository.AuthorRepository, categories repository.CategoryRepository,
	history *HistoryService, perms *PermissionService, redis *goredis.Client) PostService {
	return &postService{
		db:         db,
		posts:      posts,
		authors:    authors,
		categories: categories,
		history:    history,
		perms:      perms,
		redis:      redis,
	}
}

func (s *postService) CreatePost(req *domain.CreatePostRequest, p domain.Principal) (*domain.PostResponse, error) {
	if !s.perms.CanCreate(p) {
		return nil, common.Forbidden("authentication required to create content")
	}

	// New posts enter the workflow as DRAFT; the only other legal starting
	// point is the direct-publish path. Every other status is reached through
	// the workflow transitions, which stamp submittedAt and the like.
	status := req.Status
	switch status {
	case "":
		status = domain.StatusDraft
	case domain.StatusDraft:
	case domain.StatusPublished:
		if !s.perms.CanPublish(p) {
			return nil, common.Forbidden("only admins and editors can publish directly")
		}
	default:
		return nil, common.Validation(fmt.Sprintf("posts cannot be created with status %q", req.Status))
	}

	post := &domain.Post{
		Title:           req.Title,
		Status:          status,
		MainImage:       req.MainImage,
		FeaturedImage:   req.FeaturedImage,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		TocItems:        req.TocItems,
		ShowToc:         true,
		ReadTime:        EstimateReadTime(req.Content),
		CreatedByID:     p.ID,
	}
	post.LastModifiedByID = &p.ID
	if req.ShowToc != nil {
		post.ShowToc = *req.ShowToc
	}
	if status == domain.StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	// Byline and categories: an id that does not resolve is left unset
	if req.AuthorID != nil {
		author, err := s.authors.Find(*req.AuthorID)
		if err != nil {
			return nil, common.Internal(err)
		}
		if author != nil {
			post.AuthorID = &author.ID
		}
	}
	cats, err := s.categories.FindMany(req.CategoryIDs)
	if err != nil {
		return nil, common.Internal(err)
	}
	post.Categories = cats

	for _, t := range req.Tags {
		post.Tags = append(post.Tags, domain.PostTag{Tag: t})
	}
	for _, f := range req.FAQs {
		post.FAQs = append(post.FAQs, domain.FAQ{
			Question:     f.Question,
			Answer:       f.Answer,
			DisplayOrder: f.DisplayOrder,
		})
	}

	baseSlug := req.Slug
	if baseSlug == "" {
		baseSlug = GenerateSlug(req.Title)
	}
	if baseSlug == "" {
		return nil, common.Validation("title does not yield a usable slug")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.createWithUniqueSlug(tx, post, baseSlug); err != nil {
			return err
		}
		return s.history.RecordCreation(tx, post, p.ID)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}

	created, err := s.posts.FindByID(post.ID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return created.ToResponse(), nil
}

// createWithUniqueSlug inserts the post, relying on the unique index on
// posts.slug rather than a check-then-insert: on a duplicate-key error the
// next numeric suffix is tried. Two concurrent creators racing for the same
// slug therefore end up with distinct suffixes, never both on the base.
func (s *postService) createWithUniqueSlug(tx *gorm.DB, post *domain.Post, baseSlug string) error {
	repo := s.posts.WithTx(tx)
	for i := 0; i <= slugRetryLimit; i++ {
		if i == 0 {
			post.Slug = baseSlug
		} else {
			post.Slug = fmt.Sprintf("%s-%d", baseSlug, i)
		}
		err := repo.Create(post)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		post.ID = 0
	}
	return common.ErrSlugTaken
}

func (s *postService) GetPost(id uint64) (*domain.PostResponse, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, common.Internal(err)
	}
	return post.ToResponse(), nil
}

func (s *postService) GetPostBySlug(slug, ip, userAgent string) (*domain.PostResponse, error) {
	post, err := s.posts.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, common.Internal(err)
	}

	if ip != "" {
		s.countView(post, ip, userAgent)
	}
	return post.ToResponse(), nil
}

// countView counts at most one view per IP per day. Redis carries the
// dedup key when available; otherwise the view table is consulted.
// View counting is best effort and never fails the read.
func (s *postService) countView(post *domain.Post, ip, userAgent string) {
	fresh := false
	if s.redis != nil {
		key := fmt.Sprintf("post:view:%d:%s", post.ID, ip)
		ok, err := s.redis.SetNX(context.Background(), key, 1, 24*time.Hour).Result()
		if err == nil {
			fresh = ok
		} else {
			logger.Warn("view dedup via redis failed: %v", err)
		}
	}
	if s.redis == nil {
		seen, err := s.posts.HasRecentView(post.ID, ip, time.Now().Add(-24*time.Hour))
		if err != nil {
			logger.Warn("view dedup lookup failed: %v", err)
			return
		}
		fresh = !seen
	}

	if !fresh {
		return
	}
	if err := s.posts.RecordView(&domain.PostView{
		PostID:    post.ID,
		IPAddress: ip,
		UserAgent: userAgent,
	}); err != nil {
		logger.Warn("recording view failed: %v", err)
		return
	}
	if err := s.posts.IncrementViewCount(post.ID); err != nil {
		logger.Warn("incrementing view count failed: %v", err)
	}
}

func (s *postService) ListPosts(filter domain.PostListFilter) ([]*domain.PostResponse, error) {
	posts, err := s.posts.List(filter)
	if err != nil {
		return nil, common.Internal(err)
	}
	return toResponses(posts), nil
}

func (s *postService) ListDashboard(filter domain.PostListFilter, page, limit int, p domain.Principal) ([]*domain.PostResponse, *common.Meta, error) {
	if !s.perms.HasDashboardAccess(p) {
		return nil, nil, common.Forbidden("dashboard access required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	posts, total, err := s.posts.ListPaged(filter, page, limit)
	if err != nil {
		return nil, nil, common.Internal(err)
	}
	return toResponses(posts), common.NewMeta(page, limit, total), nil
}

func (s *postService) SearchPublished(keyword string) ([]*domain.PostResponse, error) {
	if keyword == "" {
		return []*domain.PostResponse{}, nil
	}
	posts, err := s.posts.SearchPublished(keyword)
	if err != nil {
		return nil, common.Internal(err)
	}
	return toResponses(posts), nil
}

func (s *postService) UpdatePost(id uint64, req *domain.UpdatePostRequest, p domain.Principal) (*domain.PostResponse, error) {
	var updated *domain.Post

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.posts.WithTx(tx)
		post, err := repo.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrPostNotFound
			}
			return err
		}
		if !s.perms.CanEdit(p, post) {
			return common.Forbidden("you don't have permission to edit this post")
		}
		if req.Version != 0 && req.Version != post.Version {
			return common.ErrVersionMismatch
		}

		expected := post.Version
		s.applyPatch(post, req, p)
		post.Version++

		if err := repo.UpdateVersioned(post, expected); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrVersionMismatch
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.ErrSlugTaken
			}
			return err
		}

		if req.Tags != nil {
			if err := repo.ReplaceTags(post.ID, req.Tags); err != nil {
				return err
			}
		}
		if req.CategoryIDs != nil {
			cats, err := s.categories.FindMany(req.CategoryIDs)
			if err != nil {
				return err
			}
			if err := repo.ReplaceCategories(post, cats); err != nil {
				return err
			}
		}
		if req.FAQs != nil {
			faqs := make([]domain.FAQ, len(req.FAQs))
			for i, f := range req.FAQs {
				faqs[i] = domain.FAQ{
					Question:     f.Question,
					Answer:       f.Answer,
					DisplayOrder: f.DisplayOrder,
				}
			}
			if err := repo.ReplaceFAQs(post.ID, faqs); err != nil {
				return err
			}
		}

		updated = post
		return s.history.RecordUpdate(tx, post, p.ID, "Post updated")
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}

	full, err := s.posts.FindByID(updated.ID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return full.ToResponse(), nil
}

// applyPatch copies only the fields present in the request
func (s *postService) applyPatch(post *domain.Post, req *domain.UpdatePostRequest, p domain.Principal) {
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Slug != nil {
		post.Slug = *req.Slug
	}
	if req.MainImage != nil {
		post.MainImage = *req.MainImage
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = *req.FeaturedImage
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		post.Content = *req.Content
		post.ReadTime = EstimateReadTime(*req.Content)
	}
	if req.MetaTitle != nil {
		post.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		post.MetaDescription = *req.MetaDescription
	}
	if req.TocItems != nil {
		post.TocItems = *req.TocItems
	}
	if req.ShowToc != nil {
		post.ShowToc = *req.ShowToc
	}
	if req.AuthorID != nil {
		if author, err := s.authors.Find(*req.AuthorID); err == nil && author != nil {
			post.AuthorID = &author.ID
		}
	}
	post.LastModifiedByID = &p.ID
}

// DeletePost removes a post directly. The creator may remove unpublished
// work; published posts require the deletion request flow unless the caller
// is an admin or editor.
func (s *postService) DeletePost(id uint64, p domain.Principal) error {
	post, err := s.posts.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrPostNotFound
		}
		return common.Internal(err)
	}
	if !s.perms.CanDelete(p, post) {
		if post.Status == domain.StatusPublished && post.CreatedByID == p.ID {
			return common.Forbidden("published posts are removed through a deletion request")
		}
		return common.Forbidden("you don't have permission to delete this post")
	}
	if err := s.posts.Delete(id); err != nil {
		return common.Internal(err)
	}
	return nil
}

func toResponses(posts []*domain.Post) []*domain.PostResponse {
	responses := make([]*domain.PostResponse, len(posts))
	for i, post := range posts {
		responses[i] = post.ToResponse()
	}
	return responses
}

// isBusinessError reports whether err already carries one of the caller
// visible categories, as opposed to an unexpected storage failure.
func isBusinessError(err error) bool {
	return errors.Is(err, common.ErrNotFound) ||
		errors.Is(err, common.ErrForbidden) ||
		errors.Is(err, common.ErrConflict) ||
		errors.Is(err, common.ErrValidation)
}
