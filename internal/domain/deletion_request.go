package domain

import "time"

// DeletionRequestStatus is the resolution state of a deletion request
type DeletionRequestStatus string

const (
	DeletionPending  DeletionRequestStatus = "PENDING"
	DeletionApproved DeletionRequestStatus = "APPROVED"
	DeletionDenied   DeletionRequestStatus = "DENIED"
)

// DeletionRequest mediates removal of published content. Owners cannot
// delete a published post directly; they file a request that an admin or
// editor resolves. Only one PENDING request may exist per post.
type DeletionRequest struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// Nullable: approval deletes the target and the reference goes NULL,
	// while the request itself survives for audit
	PostID *uint64 `gorm:"column:post_id;index" json:"post_id,omitempty"`
	Post   *Post   `gorm:"foreignKey:PostID;constraint:OnDelete:SET NULL" json:"post,omitempty"`
	// Snapshot of the target's title, readable after the post is gone
	PostTitle     string                `gorm:"column:post_title;type:varchar(255)" json:"post_title"`
	RequestedByID uint64                `gorm:"column:requested_by;not null;index" json:"requested_by_id"`
	RequestedBy   *User                 `gorm:"foreignKey:RequestedByID" json:"requested_by,omitempty"`
	Reason        string                `gorm:"column:reason;type:text" json:"reason"`
	Status        DeletionRequestStatus `gorm:"column:status;type:varchar(20);not null;default:PENDING;index" json:"status"`
	ReviewedByID  *uint64               `gorm:"column:reviewed_by" json:"reviewed_by_id,omitempty"`
	ReviewedBy    *User                 `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time            `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (DeletionRequest) TableName() string { return "post_deletion_requests" }

// CreateDeletionRequest is the payload for filing a deletion request
type CreateDeletionRequest struct {
	Reason string `json:"reason" binding:"required"`
}
