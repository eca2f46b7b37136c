package repository

import (
	"github.com/quillpress/quillpress-backend/internal/domain"
	"gorm.io/gorm"
)

// PostHistoryRepository append-only audit log access. Entries are written
// inside the same transaction as the mutation they record and are never
// updated afterwards.
type PostHistoryRepository interface {
	WithTx(tx *gorm.DB) PostHistoryRepository
	Append(entry *domain.PostHistory) error
	FindByPostID(postID uint64) ([]*domain.PostHistory, error)
	CountByPostID(postID uint64) (int64, error)
}

type postHistoryRepository struct {
	db *gorm.DB
}

// NewPostHistoryRepository creates a new PostHistoryRepository
func NewPostHistoryRepository(db *gorm.DB) PostHistoryRepository {
	return &postHistoryRepository{db: db}
}

func (r *postHistoryRepository) WithTx(tx *gorm.DB) PostHistoryRepository {
	return &postHistoryRepository{db: tx}
}

func (r *postHistoryRepository) Append(entry *domain.PostHistory) error {
	return r.db.Create(entry).Error
}

func (r *postHistoryRepository) FindByPostID(postID uint64) ([]*domain.PostHistory, error) {
	var entries []*domain.PostHistory
	err := r.db.Preload("ModifiedBy").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postHistoryRepository) CountByPostID(postID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.PostHistory{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
