package domain

import "time"

// History action tags. One entry is appended per state-changing operation.
const (
	HistoryCreated            = "CREATED"
	HistoryUpdated            = "UPDATED"
	HistoryStatusChanged      = "STATUS_CHANGED"
	HistorySubmittedForReview = "SUBMITTED_FOR_REVIEW"
	HistoryReviewWithdrawn    = "REVIEW_WITHDRAWN"
	HistoryApproved           = "APPROVED"
	HistoryRejected           = "REJECTED"
	HistoryPublished          = "PUBLISHED"
	HistoryUnpublished        = "UNPUBLISHED"
	HistoryArchived           = "ARCHIVED"
	HistoryRevisionPublished  = "REVISION_PUBLISHED"
	HistoryDeleted            = "DELETED"
)

// PostHistory is one append-only audit record. Rows are never updated;
// they are removed only by the cascade when their post is deleted.
type PostHistory struct {
	ID                uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID            uint64      `gorm:"column:post_id;index;not null" json:"post_id"`
	Post              *Post       `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ModifiedByID      uint64      `gorm:"column:modified_by;not null" json:"modified_by_id"`
	ModifiedBy        *User       `gorm:"foreignKey:ModifiedByID" json:"modified_by,omitempty"`
	Action            string      `gorm:"column:action;type:varchar(40);not null" json:"action"`
	ChangeDescription string      `gorm:"column:change_description;type:text" json:"change_description,omitempty"`
	OldStatus         *PostStatus `gorm:"column:old_status;type:varchar(20)" json:"old_status,omitempty"`
	NewStatus         *PostStatus `gorm:"column:new_status;type:varchar(20)" json:"new_status,omitempty"`
	PostVersion       int64       `gorm:"column:post_version" json:"post_version"`
	CreatedAt         time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PostHistory) TableName() string { return "post_history" }
