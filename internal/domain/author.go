package domain

import "time"

// Author is the public byline attached to a post. Separate from User:
// a post's author is display metadata, its creator is the accountable account.
type Author struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Bio       string    `gorm:"column:bio;type:text" json:"bio,omitempty"`
	AvatarURL string    `gorm:"column:avatar_url;type:varchar(500)" json:"avatar_url,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Author) TableName() string { return "authors" }
