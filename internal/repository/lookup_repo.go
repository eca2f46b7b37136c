package repository

import (
	"errors"

	"github.com/quillpress/quillpress-backend/internal/domain"
	"gorm.io/gorm"
)

// AuthorRepository byline lookup. An absent author id is not an error for
// the workflow: callers leave the reference unset.
type AuthorRepository interface {
	Find(id uint64) (*domain.Author, error)
}

// CategoryRepository category lookup, same absent-means-unset contract
type CategoryRepository interface {
	Find(id uint64) (*domain.Category, error)
	FindMany(ids []uint64) ([]domain.Category, error)
}

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository creates a new AuthorRepository
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

// Find returns the author or nil when the id does not resolve
func (r *authorRepository) Find(id uint64) (*domain.Author, error) {
	var author domain.Author
	err := r.db.Where("id = ?", id).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Find returns the category or nil when the id does not resolve
func (r *categoryRepository) Find(id uint64) (*domain.Category, error) {
	var category domain.Category
	err := r.db.Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindMany resolves the given ids, silently skipping those that do not exist
func (r *categoryRepository) FindMany(ids []uint64) ([]domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []domain.Category
	err := r.db.Where("id IN ?", ids).Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
