package domain

import "time"

// Role determines what a user may do across the platform.
// Capability checks live in service.PermissionService, not here.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEditor   Role = "EDITOR"
	RoleReviewer Role = "REVIEWER"
	RoleViewer   Role = "VIEWER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleReviewer, RoleViewer:
		return true
	}
	return false
}

// User represents a platform account
type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"column:username;type:varchar(100);uniqueIndex" json:"username"`
	Role      Role      `gorm:"column:role;type:varchar(20);not null;default:VIEWER" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Principal is the authenticated actor behind a request, resolved from
// the JWT by the auth middleware. A zero Principal means "not authenticated"
// and is denied by every permission check.
type Principal struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsZero reports whether the principal is absent (unauthenticated caller)
func (p Principal) IsZero() bool {
	return p.ID == 0
}
