package domain

import "time"

// PostStatus is the lifecycle state of a content item.
// Legal transitions are enforced by service.WorkflowService.
type PostStatus string

const (
	StatusDraft       PostStatus = "DRAFT"
	StatusUnderReview PostStatus = "UNDER_REVIEW"
	StatusPublished   PostStatus = "PUBLISHED"
	StatusRejected    PostStatus = "REJECTED"
	StatusArchived    PostStatus = "ARCHIVED"
)

// Valid reports whether s is one of the known statuses
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusPublished, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// Post is the canonical content item. What readers see is always the Post
// row itself; staged edits against a published post live in Revision until
// they are explicitly published.
type Post struct {
	ID     uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title  string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug   string     `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Status PostStatus `gorm:"column:status;type:varchar(20);not null;default:DRAFT;index" json:"status"`

	// Images
	MainImage     string `gorm:"column:main_image;type:varchar(500)" json:"main_image,omitempty"`
	FeaturedImage string `gorm:"column:featured_image;type:varchar(500)" json:"featured_image,omitempty"`

	// Content
	Excerpt string `gorm:"column:excerpt;type:text" json:"excerpt,omitempty"`
	Content string `gorm:"column:content;type:mediumtext" json:"content,omitempty"`

	// SEO
	MetaTitle       string `gorm:"column:meta_title;type:varchar(255)" json:"meta_title,omitempty"`
	MetaDescription string `gorm:"column:meta_description;type:text" json:"meta_description,omitempty"`

	// Table of contents (JSON array, rendered client-side)
	TocItems string `gorm:"column:toc_items;type:text" json:"toc_items,omitempty"`
	ShowToc  bool   `gorm:"column:show_toc;default:true" json:"show_toc"`

	// Analytics
	ViewCount    int `gorm:"column:view_count;default:0" json:"view_count"`
	LikeCount    int `gorm:"column:like_count;default:0" json:"like_count"`
	CommentCount int `gorm:"column:comment_count;default:0" json:"comment_count"`
	ReadTime     int `gorm:"column:read_time;default:0" json:"read_time"` // minutes

	// Optimistic concurrency counter. Incremented on every persisted
	// mutation; updates are CAS'd against it (see repository.PostRepository).
	Version int64 `gorm:"column:version;not null;default:0" json:"version"`

	// Relations
	AuthorID         *uint64 `gorm:"column:author_id" json:"author_id,omitempty"`
	Author           *Author `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedByID      uint64  `gorm:"column:created_by;not null;index" json:"created_by_id"`
	CreatedBy        *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	LastModifiedByID *uint64 `gorm:"column:last_modified_by" json:"last_modified_by_id,omitempty"`
	LastModifiedBy   *User   `gorm:"foreignKey:LastModifiedByID" json:"last_modified_by,omitempty"`

	// Review workflow
	ReviewedByID  *uint64    `gorm:"column:reviewed_by" json:"reviewed_by_id,omitempty"`
	ReviewedBy    *User      `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewComment string     `gorm:"column:review_comment;type:text" json:"review_comment,omitempty"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`

	// Owned substructures: deleted with the post at the schema level,
	// no manual collection clearing before delete.
	Tags       []PostTag  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Categories []Category `gorm:"many2many:post_categories;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	FAQs       []FAQ      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"faqs,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	// Set exactly once, on the first transition into PUBLISHED. Never cleared,
	// not even by unpublish.
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
}

func (Post) TableName() string { return "posts" }

// TagNames flattens the owned tag rows into plain strings
func (p *Post) TagNames() []string {
	names := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		names[i] = t.Tag
	}
	return names
}

// PostTag is one tag on a post, owned by its parent row
type PostTag struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	PostID uint64 `gorm:"column:post_id;index;not null" json:"-"`
	Tag    string `gorm:"column:tag;type:varchar(100);not null" json:"tag"`
}

func (PostTag) TableName() string { return "post_tags" }

// FAQ is one question/answer entry on a post, ordered by DisplayOrder
type FAQ struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID       uint64 `gorm:"column:post_id;index;not null" json:"-"`
	Question     string `gorm:"column:question;type:text;not null" json:"question"`
	Answer       string `gorm:"column:answer;type:text;not null" json:"answer"`
	DisplayOrder int    `gorm:"column:display_order;default:0" json:"display_order"`
}

func (FAQ) TableName() string { return "post_faqs" }

// PostView records one deduplicated reader view (one per IP per day)
type PostView struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID    uint64    `gorm:"column:post_id;index;not null" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)" json:"-"`
	UserAgent string    `gorm:"column:user_agent;type:varchar(500)" json:"-"`
	ViewedAt  time.Time `gorm:"column:viewed_at;autoCreateTime" json:"viewed_at"`
}

func (PostView) TableName() string { return "post_views" }

// FAQInput is the write-side shape for owned FAQ entries
type FAQInput struct {
	Question     string `json:"question" binding:"required"`
	Answer       string `json:"answer" binding:"required"`
	DisplayOrder int    `json:"display_order"`
}

// CreatePostRequest is the payload for creating a post
type CreatePostRequest struct {
	Title           string     `json:"title" binding:"required,min=1,max=255"`
	Slug            string     `json:"slug" binding:"omitempty,max=255"`
	Status          PostStatus `json:"status"`
	MainImage       string     `json:"main_image"`
	FeaturedImage   string     `json:"featured_image"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	TocItems        string     `json:"toc_items"`
	ShowToc         *bool      `json:"show_toc"`
	Tags            []string   `json:"tags"`
	AuthorID        *uint64    `json:"author_id"`
	CategoryIDs     []uint64   `json:"category_ids"`
	FAQs            []FAQInput `json:"faqs"`
}

// UpdatePostRequest is a partial patch: nil fields are left untouched
type UpdatePostRequest struct {
	Title           *string    `json:"title"`
	Slug            *string    `json:"slug"`
	MainImage       *string    `json:"main_image"`
	FeaturedImage   *string    `json:"featured_image"`
	Excerpt         *string    `json:"excerpt"`
	Content         *string    `json:"content"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	TocItems        *string    `json:"toc_items"`
	ShowToc         *bool      `json:"show_toc"`
	Tags            []string   `json:"tags"`
	AuthorID        *uint64    `json:"author_id"`
	CategoryIDs     []uint64   `json:"category_ids"`
	FAQs            []FAQInput `json:"faqs"`
	// Expected current version for optimistic concurrency; 0 skips the check
	// for callers that do not track versions (dashboard autosave).
	Version int64 `json:"version"`
}

// PostListFilter narrows list queries; zero values mean "no filter"
type PostListFilter struct {
	Status        PostStatus
	CategoryID    uint64
	AuthorID      uint64
	CreatedByID   uint64
	TitleContains string
}

// PostResponse is the read-side shape for a post
type PostResponse struct {
	ID              uint64     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Status          PostStatus `json:"status"`
	MainImage       string     `json:"main_image,omitempty"`
	FeaturedImage   string     `json:"featured_image,omitempty"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Content         string     `json:"content,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	TocItems        string     `json:"toc_items,omitempty"`
	ShowToc         bool       `json:"show_toc"`
	ViewCount       int        `json:"view_count"`
	LikeCount       int        `json:"like_count"`
	CommentCount    int        `json:"comment_count"`
	ReadTime        int        `json:"read_time"`
	Version         int64      `json:"version"`
	Author          *Author    `json:"author,omitempty"`
	CreatedByID     uint64     `json:"created_by_id"`
	ReviewComment   string     `json:"review_comment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	Tags            []string   `json:"tags"`
	Categories      []Category `json:"categories"`
	FAQs            []FAQ      `json:"faqs"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
}

// ToResponse converts a Post to its API shape
func (p *Post) ToResponse() *PostResponse {
	resp := &PostResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Status:          p.Status,
		MainImage:       p.MainImage,
		FeaturedImage:   p.FeaturedImage,
		Excerpt:         p.Excerpt,
		Content:         p.Content,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		TocItems:        p.TocItems,
		ShowToc:         p.ShowToc,
		ViewCount:       p.ViewCount,
		LikeCount:       p.LikeCount,
		CommentCount:    p.CommentCount,
		ReadTime:        p.ReadTime,
		Version:         p.Version,
		Author:          p.Author,
		CreatedByID:     p.CreatedByID,
		ReviewComment:   p.ReviewComment,
		ReviewedAt:      p.ReviewedAt,
		Tags:            p.TagNames(),
		Categories:      p.Categories,
		FAQs:            p.FAQs,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		PublishedAt:     p.PublishedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.Categories == nil {
		resp.Categories = []Category{}
	}
	if resp.FAQs == nil {
		resp.FAQs = []FAQ{}
	}
	return resp
}
