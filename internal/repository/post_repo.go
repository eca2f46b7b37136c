package repository

import (
	"strings"
	"time"

	"github.com/quillpress/quillpress-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository data access for posts and their owned substructures
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	FindByID(id uint64) (*domain.Post, error)
	// FindByIDForUpdate locks the row for the duration of the enclosing
	// transaction. Callers must be inside one.
	FindByIDForUpdate(id uint64) (*domain.Post, error)
	FindBySlug(slug string) (*domain.Post, error)
	List(filter domain.PostListFilter) ([]*domain.Post, error)
	ListPaged(filter domain.PostListFilter, page, limit int) ([]*domain.Post, int64, error)
	SearchPublished(keyword string) ([]*domain.Post, error)
	Create(post *domain.Post) error
	// UpdateVersioned persists scalar columns with a compare-and-swap on the
	// version counter. Returns gorm.ErrRecordNotFound when the expected
	// version no longer matches (concurrent writer won).
	UpdateVersioned(post *domain.Post, expectedVersion int64) error
	ReplaceTags(postID uint64, tags []string) error
	ReplaceCategories(post *domain.Post, categories []domain.Category) error
	ReplaceFAQs(postID uint64, faqs []domain.FAQ) error
	Delete(id uint64) error
	HasRecentView(postID uint64, ip string, since time.Time) (bool, error)
	RecordView(view *domain.PostView) error
	IncrementViewCount(id uint64) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

func (r *postRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Author").
		Preload("Tags").
		Preload("Categories").
		Preload("FAQs", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		})
}

func (r *postRepository) FindByID(id uint64) (*domain.Post, error) {
	var post domain.Post
	err := r.preloaded().Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindByIDForUpdate(id uint64) (*domain.Post, error) {
	var post domain.Post
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	// Owned collections are loaded after the lock is held
	err = r.db.
		Preload("Tags").
		Preload("Categories").
		Preload("FAQs", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindBySlug(slug string) (*domain.Post, error) {
	var post domain.Post
	err := r.preloaded().Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) applyFilter(query *gorm.DB, filter domain.PostListFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("posts.status = ?", filter.Status)
	}
	if filter.AuthorID != 0 {
		query = query.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.CreatedByID != 0 {
		query = query.Where("posts.created_by = ?", filter.CreatedByID)
	}
	if filter.TitleContains != "" {
		query = query.Where("LOWER(posts.title) LIKE ?", "%"+strings.ToLower(filter.TitleContains)+"%")
	}
	if filter.CategoryID != 0 {
		query = query.Joins("JOIN post_categories pc ON pc.post_id = posts.id").
			Where("pc.category_id = ?", filter.CategoryID)
	}
	return query
}

func (r *postRepository) List(filter domain.PostListFilter) ([]*domain.Post, error) {
	var posts []*domain.Post
	query := r.applyFilter(r.preloaded().Model(&domain.Post{}), filter)
	err := query.Order("posts.created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListPaged(filter domain.PostListFilter, page, limit int) ([]*domain.Post, int64, error) {
	var posts []*domain.Post
	var total int64

	counter := r.applyFilter(r.db.Model(&domain.Post{}), filter)
	if err := counter.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := r.applyFilter(r.preloaded().Model(&domain.Post{}), filter)
	err := query.Order("posts.updated_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// SearchPublished matches keyword against title, content, excerpt and
// category titles. Restricted to PUBLISHED items: drafts and rejected
// content must never leak into reader-facing search.
func (r *postRepository) SearchPublished(keyword string) ([]*domain.Post, error) {
	var posts []*domain.Post
	pattern := "%" + strings.ToLower(keyword) + "%"
	err := r.preloaded().Model(&domain.Post{}).
		Where("posts.status = ?", domain.StatusPublished).
		Where(r.db.
			Where("LOWER(posts.title) LIKE ?", pattern).
			Or("LOWER(posts.content) LIKE ?", pattern).
			Or("LOWER(posts.excerpt) LIKE ?", pattern).
			Or("posts.id IN (?)", r.db.Table("post_categories pc").
				Select("pc.post_id").
				Joins("JOIN categories c ON c.id = pc.category_id").
				Where("LOWER(c.title) LIKE ?", pattern))).
		Order("posts.published_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Create(post *domain.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) UpdateVersioned(post *domain.Post, expectedVersion int64) error {
	result := r.db.Model(&domain.Post{}).
		Where("id = ? AND version = ?", post.ID, expectedVersion).
		Select("title", "slug", "status", "main_image", "featured_image",
			"excerpt", "content", "meta_title", "meta_description",
			"toc_items", "show_toc", "read_time", "version",
			"author_id", "last_modified_by", "reviewed_by", "reviewed_at",
			"review_comment", "submitted_at", "published_at", "updated_at").
		Updates(post)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) ReplaceTags(postID uint64, tags []string) error {
	if err := r.db.Where("post_id = ?", postID).Delete(&domain.PostTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]domain.PostTag, len(tags))
	for i, t := range tags {
		rows[i] = domain.PostTag{PostID: postID, Tag: t}
	}
	return r.db.Create(&rows).Error
}

func (r *postRepository) ReplaceCategories(post *domain.Post, categories []domain.Category) error {
	return r.db.Model(post).Association("Categories").Replace(categories)
}

func (r *postRepository) ReplaceFAQs(postID uint64, faqs []domain.FAQ) error {
	if err := r.db.Where("post_id = ?", postID).Delete(&domain.FAQ{}).Error; err != nil {
		return err
	}
	if len(faqs) == 0 {
		return nil
	}
	for i := range faqs {
		faqs[i].ID = 0
		faqs[i].PostID = postID
	}
	return r.db.Create(&faqs).Error
}

// Delete removes the post. Owned rows (tags, FAQs, views, history,
// category links) go with it through the cascades declared on the schema;
// no manual collection clearing here.
func (r *postRepository) Delete(id uint64) error {
	return r.db.Select(clause.Associations).Delete(&domain.Post{ID: id}).Error
}

func (r *postRepository) HasRecentView(postID uint64, ip string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&domain.PostView{}).
		Where("post_id = ? AND ip_address = ? AND viewed_at > ?", postID, ip, since).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) RecordView(view *domain.PostView) error {
	return r.db.Create(view).Error
}

func (r *postRepository) IncrementViewCount(id uint64) error {
	return r.db.Model(&domain.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
