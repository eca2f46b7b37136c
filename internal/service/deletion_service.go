package service

import (
	"errors"
	"time"

	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/repository"
	"gorm.io/gorm"
)

// DeletionService mediates removal of published posts. The owner files a
// request; an admin or editor approves (deleting the post and its history
// in the same transaction) or denies it.
type DeletionService interface {
	RequestDeletion(postID uint64, reason string, p domain.Principal) (*domain.DeletionRequest, error)
	ApproveRequest(requestID uint64, p domain.Principal) error
	DenyRequest(requestID uint64, p domain.Principal) (*domain.DeletionRequest, error)
	ListPending(p domain.Principal) ([]*domain.DeletionRequest, error)
	ListMyRequests(p domain.Principal) ([]*domain.DeletionRequest, error)
}

type deletionService struct {
	db       *gorm.DB
	posts    repository.PostRepository
	requests repository.DeletionRequestRepository
	perms    *PermissionService
}

// NewDeletionService creates a new DeletionService
func NewDeletionService(db *gorm.DB, posts repository.PostRepository,
	requests repository.DeletionRequestRepository, perms *PermissionService) DeletionService {
	return &deletionService{db: db, posts: posts, requests: requests, perms: perms}
}

func (s *deletionService) RequestDeletion(postID uint64, reason string, p domain.Principal) (*domain.DeletionRequest, error) {
	if p.IsZero() {
		return nil, common.Forbidden("authentication required")
	}
	if reason == "" {
		return nil, common.Validation("a deletion request requires a reason")
	}

	var request *domain.DeletionRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		postRepo := s.posts.WithTx(tx)
		post, err := postRepo.FindByIDForUpdate(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrPostNotFound
			}
			return err
		}
		// Only the mediated path applies to published content; anything
		// else is deletable directly by whoever CanDelete allows.
		if post.Status != domain.StatusPublished {
			return common.Validation("unpublished posts are deleted directly, not via request")
		}
		// The mediated path is for creators who cannot delete published
		// content themselves; elevated roles delete directly via DeletePost.
		if post.CreatedByID != p.ID {
			return common.Forbidden("only the post's creator can request deletion")
		}

		reqRepo := s.requests.WithTx(tx)
		pending, err := reqRepo.FindPendingByPostIDForUpdate(postID)
		if err != nil {
			return err
		}
		if pending != nil {
			return common.ErrPendingRequestExists
		}

		request = &domain.DeletionRequest{
			PostID:        &post.ID,
			PostTitle:     post.Title,
			RequestedByID: p.ID,
			Reason:        reason,
			Status:        domain.DeletionPending,
		}
		return reqRepo.Create(request)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}
	return request, nil
}

// ApproveRequest deletes the target post and resolves the request in one
// transaction. The post's history, tags, categories and FAQs go with it.
func (s *deletionService) ApproveRequest(requestID uint64, p domain.Principal) error {
	if !s.perms.CanPublish(p) {
		return common.Forbidden("only admins and editors can resolve deletion requests")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		reqRepo := s.requests.WithTx(tx)
		request, err := reqRepo.FindByIDForUpdate(requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrRequestNotFound
			}
			return err
		}
		if request.Status != domain.DeletionPending {
			return common.ErrRequestResolved
		}
		if request.PostID == nil {
			return common.ErrPostNotFound
		}

		if err := s.posts.WithTx(tx).Delete(*request.PostID); err != nil {
			return err
		}
		// the DB nulls post_id via the SET NULL rule; mirror that here so
		// the save below does not write the dead reference back
		request.PostID = nil

		now := time.Now()
		request.Status = domain.DeletionApproved
		request.ReviewedByID = &p.ID
		request.ReviewedAt = &now
		return reqRepo.Save(request)
	})
	if err != nil {
		if isBusinessError(err) {
			return err
		}
		return common.Internal(err)
	}
	return nil
}

func (s *deletionService) DenyRequest(requestID uint64, p domain.Principal) (*domain.DeletionRequest, error) {
	if !s.perms.CanPublish(p) {
		return nil, common.Forbidden("only admins and editors can resolve deletion requests")
	}

	var request *domain.DeletionRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reqRepo := s.requests.WithTx(tx)
		found, err := reqRepo.FindByIDForUpdate(requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrRequestNotFound
			}
			return err
		}
		if found.Status != domain.DeletionPending {
			return common.ErrRequestResolved
		}

		now := time.Now()
		found.Status = domain.DeletionDenied
		found.ReviewedByID = &p.ID
		found.ReviewedAt = &now
		request = found
		return reqRepo.Save(found)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}
	return request, nil
}

func (s *deletionService) ListPending(p domain.Principal) ([]*domain.DeletionRequest, error) {
	if !s.perms.CanPublish(p) {
		return nil, common.Forbidden("only admins and editors can view pending deletion requests")
	}
	requests, err := s.requests.ListByStatus(domain.DeletionPending)
	if err != nil {
		return nil, common.Internal(err)
	}
	return requests, nil
}

func (s *deletionService) ListMyRequests(p domain.Principal) ([]*domain.DeletionRequest, error) {
	if p.IsZero() {
		return nil, common.Forbidden("authentication required")
	}
	requests, err := s.requests.ListByRequester(p.ID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return requests, nil
}
