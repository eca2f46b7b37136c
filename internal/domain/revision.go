package domain

import "time"

// RevisionStatus is the lifecycle state of a staged revision
type RevisionStatus string

const (
	RevisionDraft         RevisionStatus = "DRAFT"
	RevisionPendingReview RevisionStatus = "PENDING_REVIEW"
	RevisionApproved      RevisionStatus = "APPROVED"
	RevisionDiscarded     RevisionStatus = "DISCARDED"
)

// Active reports whether the revision still shadows its post.
// At most one active revision may exist per post at any time.
func (s RevisionStatus) Active() bool {
	return s == RevisionDraft || s == RevisionPendingReview
}

// Revision is a staged copy of a post's editable fields. Editors work on
// the revision while readers keep seeing the live post; publishing the
// revision copies its fields back onto the post in one transaction.
type Revision struct {
	ID     uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID uint64         `gorm:"column:post_id;index;not null" json:"post_id"`
	Post   *Post          `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Status RevisionStatus `gorm:"column:status;type:varchar(20);not null;default:DRAFT;index" json:"status"`

	// Staged copies of every editable post field
	Title           string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug            string `gorm:"column:slug;type:varchar(255);not null" json:"slug"`
	MainImage       string `gorm:"column:main_image;type:varchar(500)" json:"main_image,omitempty"`
	FeaturedImage   string `gorm:"column:featured_image;type:varchar(500)" json:"featured_image,omitempty"`
	Excerpt         string `gorm:"column:excerpt;type:text" json:"excerpt,omitempty"`
	Content         string `gorm:"column:content;type:mediumtext" json:"content,omitempty"`
	MetaTitle       string `gorm:"column:meta_title;type:varchar(255)" json:"meta_title,omitempty"`
	MetaDescription string `gorm:"column:meta_description;type:text" json:"meta_description,omitempty"`
	TocItems        string `gorm:"column:toc_items;type:text" json:"toc_items,omitempty"`
	ShowToc         bool   `gorm:"column:show_toc;default:true" json:"show_toc"`
	ReadTime        int    `gorm:"column:read_time;default:0" json:"read_time"`

	AuthorID *uint64 `gorm:"column:author_id" json:"author_id,omitempty"`
	Author   *Author `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Tags       []RevisionTag `gorm:"foreignKey:RevisionID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Categories []Category    `gorm:"many2many:revision_categories;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	FAQs       []RevisionFAQ `gorm:"foreignKey:RevisionID;constraint:OnDelete:CASCADE" json:"faqs,omitempty"`

	CreatedByID      uint64  `gorm:"column:created_by;not null" json:"created_by_id"`
	CreatedBy        *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	LastModifiedByID *uint64 `gorm:"column:last_modified_by" json:"last_modified_by_id,omitempty"`
	LastModifiedBy   *User   `gorm:"foreignKey:LastModifiedByID" json:"last_modified_by,omitempty"`

	RevisionNotes string `gorm:"column:revision_notes;type:text" json:"revision_notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	// When this revision was merged onto its post
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
}

func (Revision) TableName() string { return "post_revisions" }

// TagNames flattens the owned tag rows into plain strings
func (r *Revision) TagNames() []string {
	names := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		names[i] = t.Tag
	}
	return names
}

// RevisionTag is one tag staged on a revision
type RevisionTag struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RevisionID uint64 `gorm:"column:revision_id;index;not null" json:"-"`
	Tag        string `gorm:"column:tag;type:varchar(100);not null" json:"tag"`
}

func (RevisionTag) TableName() string { return "revision_tags" }

// RevisionFAQ is one FAQ entry staged on a revision
type RevisionFAQ struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RevisionID   uint64 `gorm:"column:revision_id;index;not null" json:"-"`
	Question     string `gorm:"column:question;type:text;not null" json:"question"`
	Answer       string `gorm:"column:answer;type:text;not null" json:"answer"`
	DisplayOrder int    `gorm:"column:display_order;default:0" json:"display_order"`
}

func (RevisionFAQ) TableName() string { return "revision_faqs" }

// UpdateRevisionRequest is a partial patch: nil fields are left untouched
type UpdateRevisionRequest struct {
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
	RevisionNotes   *string    `json:"revision_notes"`
}
