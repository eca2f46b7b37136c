package repository

import (
	"errors"

	"github.com/quillpress/quillpress-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeletionRequestRepository data access for deletion requests
type DeletionRequestRepository interface {
	WithTx(tx *gorm.DB) DeletionRequestRepository
	FindByID(id uint64) (*domain.DeletionRequest, error)
	// FindByIDForUpdate locks the request row; must run inside a transaction
	FindByIDForUpdate(id uint64) (*domain.DeletionRequest, error)
	// FindPendingByPostID returns the PENDING request for a post, nil when
	// none exists.
	FindPendingByPostID(postID uint64) (*domain.DeletionRequest, error)
	// FindPendingByPostIDForUpdate is the locked variant used by the atomic
	// create path.
	FindPendingByPostIDForUpdate(postID uint64) (*domain.DeletionRequest, error)
	ListByStatus(status domain.DeletionRequestStatus) ([]*domain.DeletionRequest, error)
	ListByRequester(userID uint64) ([]*domain.DeletionRequest, error)
	Create(request *domain.DeletionRequest) error
	Save(request *domain.DeletionRequest) error
}

type deletionRequestRepository struct {
	db *gorm.DB
}

// NewDeletionRequestRepository creates a new DeletionRequestRepository
func NewDeletionRequestRepository(db *gorm.DB) DeletionRequestRepository {
	return &deletionRequestRepository{db: db}
}

func (r *deletionRequestRepository) WithTx(tx *gorm.DB) DeletionRequestRepository {
	return &deletionRequestRepository{db: tx}
}

func (r *deletionRequestRepository) FindByID(id uint64) (*domain.DeletionRequest, error) {
	var request domain.DeletionRequest
	err := r.db.Preload("Post").Preload("RequestedBy").Preload("ReviewedBy").
		Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *deletionRequestRepository) FindByIDForUpdate(id uint64) (*domain.DeletionRequest, error) {
	var request domain.DeletionRequest
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *deletionRequestRepository) findPending(db *gorm.DB, postID uint64) (*domain.DeletionRequest, error) {
	var request domain.DeletionRequest
	err := db.Where("post_id = ? AND status = ?", postID, domain.DeletionPending).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *deletionRequestRepository) FindPendingByPostID(postID uint64) (*domain.DeletionRequest, error) {
	return r.findPending(r.db, postID)
}

func (r *deletionRequestRepository) FindPendingByPostIDForUpdate(postID uint64) (*domain.DeletionRequest, error) {
	return r.findPending(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), postID)
}

func (r *deletionRequestRepository) ListByStatus(status domain.DeletionRequestStatus) ([]*domain.DeletionRequest, error) {
	var requests []*domain.DeletionRequest
	err := r.db.Preload("Post").Preload("RequestedBy").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *deletionRequestRepository) ListByRequester(userID uint64) ([]*domain.DeletionRequest, error) {
	var requests []*domain.DeletionRequest
	err := r.db.Preload("Post").Preload("ReviewedBy").
		Where("requested_by = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *deletionRequestRepository) Create(request *domain.DeletionRequest) error {
	return r.db.Create(request).Error
}

func (r *deletionRequestRepository) Save(request *domain.DeletionRequest) error {
	return r.db.Omit("Post", "RequestedBy", "ReviewedBy").Save(request).Error
}
