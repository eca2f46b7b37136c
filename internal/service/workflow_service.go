package service

import (
	"errors"
	"time"

	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/repository"
	"gorm.io/gorm"
)

// WorkflowService drives the review lifecycle of a post. Every transition
// runs in a single transaction: lock the row, verify the source state and
// the caller's permission, mutate, bump the version, append one history
// entry. A rejected transition leaves the post untouched.
type WorkflowService interface {
	Submit(postID uint64, p domain.Principal) (*domain.PostResponse, error)
	Unsubmit(postID uint64, p domain.Principal) (*domain.PostResponse, error)
	Approve(postID uint64, comment string, p domain.Principal) (*domain.PostResponse, error)
	Reject(postID uint64, comment string, p domain.Principal) (*domain.PostResponse, error)
	Publish(postID uint64, p domain.Principal) (*domain.PostResponse, error)
	Unpublish(postID uint64, p domain.Principal) (*domain.PostResponse, error)
	Archive(postID uint64, p domain.Principal) (*domain.PostResponse, error)
	RevertToDraft(postID uint64, p domain.Principal) (*domain.PostResponse, error)
	ListUnderReview(page, limit int, p domain.Principal) ([]*domain.PostResponse, *common.Meta, error)
}

type workflowService struct {
	db      *gorm.DB
	posts   repository.PostRepository
	history *HistoryService
	perms   *PermissionService
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(db *gorm.DB, posts repository.PostRepository,
	history *HistoryService, perms *PermissionService) WorkflowService {
	return &workflowService{db: db, posts: posts, history: history, perms: perms}
}

// transition is one guarded edge of the state machine
type transition struct {
	action string
	from   []domain.PostStatus
	// allowed gates the caller; mutate applies the edge's stamps
	allowed func(s *workflowService, p domain.Principal, post *domain.Post) bool
	mutate  func(post *domain.Post, p domain.Principal, comment string)
}

func statusIn(status domain.PostStatus, list []domain.PostStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

// markPublished stamps publishedAt only on the first entry into PUBLISHED;
// later republishes keep the original timestamp
func markPublished(post *domain.Post) {
	post.Status = domain.StatusPublished
	if post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
}

var (
	submitEdge = transition{
		action: domain.HistorySubmittedForReview,
		from:   []domain.PostStatus{domain.StatusDraft},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return post.CreatedByID == p.ID
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			post.Status = domain.StatusUnderReview
			now := time.Now()
			post.SubmittedAt = &now
		},
	}

	unsubmitEdge = transition{
		action: domain.HistoryReviewWithdrawn,
		from:   []domain.PostStatus{domain.StatusUnderReview},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return post.CreatedByID == p.ID
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			post.Status = domain.StatusDraft
			post.SubmittedAt = nil
		},
	}

	approveEdge = transition{
		action: domain.HistoryApproved,
		from:   []domain.PostStatus{domain.StatusUnderReview},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return s.perms.CanReview(p)
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			markPublished(post)
			now := time.Now()
			post.ReviewedByID = &p.ID
			post.ReviewedAt = &now
			post.ReviewComment = comment
		},
	}

	rejectEdge = transition{
		action: domain.HistoryRejected,
		from:   []domain.PostStatus{domain.StatusUnderReview},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return s.perms.CanReview(p)
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			post.Status = domain.StatusRejected
			now := time.Now()
			post.ReviewedByID = &p.ID
			post.ReviewedAt = &now
			post.ReviewComment = comment
		},
	}

	// direct publish bypasses review; legal from any non-terminal state
	publishEdge = transition{
		action: domain.HistoryPublished,
		from: []domain.PostStatus{
			domain.StatusDraft, domain.StatusUnderReview,
			domain.StatusRejected, domain.StatusArchived,
		},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return s.perms.CanPublish(p)
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			markPublished(post)
		},
	}

	unpublishEdge = transition{
		action: domain.HistoryUnpublished,
		from:   []domain.PostStatus{domain.StatusPublished},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return p.Role == domain.RoleAdmin
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			// publishedAt stays, it records the first publication
			post.Status = domain.StatusDraft
		},
	}

	archiveEdge = transition{
		action: domain.HistoryArchived,
		from:   []domain.PostStatus{domain.StatusPublished},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return s.perms.CanPublish(p)
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			post.Status = domain.StatusArchived
		},
	}

	// a rejected post returns to the drawing board before resubmission
	revertEdge = transition{
		action: domain.HistoryStatusChanged,
		from:   []domain.PostStatus{domain.StatusRejected},
		allowed: func(s *workflowService, p domain.Principal, post *domain.Post) bool {
			return post.CreatedByID == p.ID || s.perms.CanPublish(p)
		},
		mutate: func(post *domain.Post, p domain.Principal, comment string) {
			post.Status = domain.StatusDraft
			post.SubmittedAt = nil
		},
	}
)

func (s *workflowService) Submit(postID uint64, p domain.Principal) (*domain.PostResponse, error) {
	return s.apply(postID, p, "", submitEdge, "submit")
}

func (s *workflowService) Unsubmit(postID uint64, p domain.Principal) (*domain.PostResponse, error) {
	return s.apply(postID, p, "", unsubmitEdge, "unsubmit")
}

func (s *workflowService) Approve(postID uint64, comment string, p domain.Principal) (*domain.PostResponse, error) {
	return s.apply(postID, p, comment, approveEdge, "approve")
}

func (s *workflowService) Reject(postID uint64, comment string, p domain.Principal) (*domain.PostResponse, error) {
	if comment == "" {
		return nil, common.Validation("a rejection requires a review comment")
	}
	return s.apply(postID, p, comment, rejectEdge, "reject")
}

func (s *workflowService) Publish(postID uint64, p domain.Principal) (*domain.PostResponse, error) {
	return s.apply(postID, p, "", publishEdge, "publish")
}

func (s *workflowService) Unpublish(postID uint64, p domain.Principal) (*domain.PostResponse, error) {
	return s.apply(postID, p, "", unpublishEdge, "unpublish")
}

func (s *workflowService) Archive(postID uint64, p domain.Principal) (*domain.PostResponse, error) {
	return s.apply(postID, p, "", archiveEdge, "archive")
}

func (s *workflowService) RevertToDraft(postID uint64, p domain.Principal) (*domain.PostResponse, error) {
	return s.apply(postID, p, "", revertEdge, "revert to draft")
}

func (s *workflowService) ListUnderReview(page, limit int, p domain.Principal) ([]*domain.PostResponse, *common.Meta, error) {
	if !s.perms.HasDashboardAccess(p) {
		return nil, nil, common.Forbidden("dashboard access required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	posts, total, err := s.posts.ListPaged(domain.PostListFilter{Status: domain.StatusUnderReview}, page, limit)
	if err != nil {
		return nil, nil, common.Internal(err)
	}
	return toResponses(posts), common.NewMeta(page, limit, total), nil
}

// apply executes a single transition atomically
func (s *workflowService) apply(postID uint64, p domain.Principal, comment string, edge transition, name string) (*domain.PostResponse, error) {
	var result *domain.Post

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.posts.WithTx(tx)
		post, err := repo.FindByIDForUpdate(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrPostNotFound
			}
			return err
		}
		if !statusIn(post.Status, edge.from) {
			return common.IllegalTransition(name, string(post.Status))
		}
		if !edge.allowed(s, p, post) {
			return common.Forbidden("you don't have permission to " + name + " this post")
		}

		oldStatus := post.Status
		expected := post.Version
		edge.mutate(post, p, comment)
		post.LastModifiedByID = &p.ID
		post.Version++

		if err := repo.UpdateVersioned(post, expected); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrVersionMismatch
			}
			return err
		}

		result = post
		return s.history.RecordStatusChange(tx, post, p.ID, edge.action, oldStatus, post.Status, comment)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}

	full, err := s.posts.FindByID(result.ID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return full.ToResponse(), nil
}
