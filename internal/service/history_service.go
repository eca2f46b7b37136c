package service

import (
	"fmt"

	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/repository"
	"gorm.io/gorm"
)

// HistoryService appends and reads the audit trail. Every state-changing
// operation records exactly one entry, inside the same transaction as the
// mutation itself: a committed change without its entry must be impossible.
type HistoryService struct {
	repo repository.PostHistoryRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(repo repository.PostHistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// Record appends one entry within tx
func (s *HistoryService) Record(tx *gorm.DB, post *domain.Post, actorID uint64,
	action, description string, oldStatus, newStatus *domain.PostStatus) error {
	entry := &domain.PostHistory{
		PostID:            post.ID,
		ModifiedByID:      actorID,
		Action:            action,
		ChangeDescription: description,
		OldStatus:         oldStatus,
		NewStatus:         newStatus,
		PostVersion:       post.Version,
	}
	return s.repo.WithTx(tx).Append(entry)
}

// RecordCreation tracks a new post
func (s *HistoryService) RecordCreation(tx *gorm.DB, post *domain.Post, actorID uint64) error {
	status := post.Status
	return s.Record(tx, post, actorID, domain.HistoryCreated, "Post created", nil, &status)
}

// RecordUpdate tracks a content edit that did not change status
func (s *HistoryService) RecordUpdate(tx *gorm.DB, post *domain.Post, actorID uint64, description string) error {
	status := post.Status
	return s.Record(tx, post, actorID, domain.HistoryUpdated, description, &status, &status)
}

// RecordStatusChange tracks a workflow transition
func (s *HistoryService) RecordStatusChange(tx *gorm.DB, post *domain.Post, actorID uint64,
	action string, oldStatus, newStatus domain.PostStatus, description string) error {
	if description == "" {
		description = fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
	}
	return s.Record(tx, post, actorID, action, description, &oldStatus, &newStatus)
}

// ListForPost returns the audit trail, newest first. Dashboard access only.
func (s *HistoryService) ListForPost(postID uint64, p domain.Principal, perms *PermissionService) ([]*domain.PostHistory, error) {
	if !perms.HasDashboardAccess(p) {
		return nil, common.Forbidden("dashboard access required to view post history")
	}
	entries, err := s.repo.FindByPostID(postID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return entries, nil
}
