package repository

import (
	"errors"

	"github.com/quillpress/quillpress-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevisionRepository data access for staged post revisions
type RevisionRepository interface {
	WithTx(tx *gorm.DB) RevisionRepository
	FindByID(id uint64) (*domain.Revision, error)
	// FindByIDForUpdate locks the revision row for the duration of the
	// enclosing transaction. Callers must be inside one.
	FindByIDForUpdate(id uint64) (*domain.Revision, error)
	// FindActiveByPostID returns the DRAFT or PENDING_REVIEW revision for a
	// post, nil when none exists.
	FindActiveByPostID(postID uint64) (*domain.Revision, error)
	// FindActiveByPostIDForUpdate is FindActiveByPostID under a row lock,
	// for the atomic get-or-create in RevisionService. Must run inside a
	// transaction.
	FindActiveByPostIDForUpdate(postID uint64) (*domain.Revision, error)
	FindByPostID(postID uint64) ([]*domain.Revision, error)
	FindByCreator(userID uint64) ([]*domain.Revision, error)
	Create(revision *domain.Revision) error
	Save(revision *domain.Revision) error
	UpdateStatus(id uint64, status domain.RevisionStatus) error
	ReplaceTags(revisionID uint64, tags []string) error
	ReplaceCategories(revision *domain.Revision, categories []domain.Category) error
	ReplaceFAQs(revisionID uint64, faqs []domain.RevisionFAQ) error
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) WithTx(tx *gorm.DB) RevisionRepository {
	return &revisionRepository{db: tx}
}

func (r *revisionRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Author").
		Preload("Tags").
		Preload("Categories").
		Preload("FAQs", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		})
}

func (r *revisionRepository) FindByID(id uint64) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.preloaded().Where("id = ?", id).First(&revision).Error
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) FindByIDForUpdate(id uint64) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&revision).Error
	if err != nil {
		return nil, err
	}
	// Collections load after the lock is held; see findActive.
	return r.preloadInto(id)
}

func (r *revisionRepository) findActive(db *gorm.DB, postID uint64) (*domain.Revision, error) {
	var revision domain.Revision
	err := db.
		Where("post_id = ? AND status IN ?", postID,
			[]domain.RevisionStatus{domain.RevisionDraft, domain.RevisionPendingReview}).
		Order("updated_at DESC").
		First(&revision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// Load owned collections separately so the active lookup itself stays
	// a single lockable row read.
	full, err := r.preloadInto(revision.ID)
	if err != nil {
		return nil, err
	}
	return full, nil
}

func (r *revisionRepository) preloadInto(id uint64) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.preloaded().Where("id = ?", id).First(&revision).Error
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) FindActiveByPostID(postID uint64) (*domain.Revision, error) {
	return r.findActive(r.db, postID)
}

func (r *revisionRepository) FindActiveByPostIDForUpdate(postID uint64) (*domain.Revision, error) {
	return r.findActive(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), postID)
}

func (r *revisionRepository) FindByPostID(postID uint64) ([]*domain.Revision, error) {
	var revisions []*domain.Revision
	err := r.preloaded().
		Where("post_id = ?", postID).
		Order("updated_at DESC").
		Find(&revisions).Error
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

func (r *revisionRepository) FindByCreator(userID uint64) ([]*domain.Revision, error) {
	var revisions []*domain.Revision
	err := r.preloaded().
		Where("created_by = ?", userID).
		Order("updated_at DESC").
		Find(&revisions).Error
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

func (r *revisionRepository) Create(revision *domain.Revision) error {
	return r.db.Create(revision).Error
}

func (r *revisionRepository) Save(revision *domain.Revision) error {
	return r.db.Omit("Tags", "Categories", "FAQs", "Post", "Author", "CreatedBy", "LastModifiedBy").
		Save(revision).Error
}

func (r *revisionRepository) UpdateStatus(id uint64, status domain.RevisionStatus) error {
	return r.db.Model(&domain.Revision{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *revisionRepository) ReplaceTags(revisionID uint64, tags []string) error {
	if err := r.db.Where("revision_id = ?", revisionID).Delete(&domain.RevisionTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]domain.RevisionTag, len(tags))
	for i, t := range tags {
		rows[i] = domain.RevisionTag{RevisionID: revisionID, Tag: t}
	}
	return r.db.Create(&rows).Error
}

func (r *revisionRepository) ReplaceCategories(revision *domain.Revision, categories []domain.Category) error {
	return r.db.Model(revision).Association("Categories").Replace(categories)
}

func (r *revisionRepository) ReplaceFAQs(revisionID uint64, faqs []domain.RevisionFAQ) error {
	if err := r.db.Where("revision_id = ?", revisionID).Delete(&domain.RevisionFAQ{}).Error; err != nil {
		return err
	}
	if len(faqs) == 0 {
		return nil
	}
	for i := range faqs {
		faqs[i].ID = 0
		faqs[i].RevisionID = revisionID
	}
	return r.db.Create(&faqs).Error
}
