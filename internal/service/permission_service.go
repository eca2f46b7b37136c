package service

import "github.com/quillpress/quillpress-backend/internal/domain"

// PermissionService owns every role-to-capability mapping. All checks are
// pure and side-effect free; an absent principal always denies, never errors.
// Changing who may do what is an edit here and nowhere else.
type PermissionService struct{}

// NewPermissionService creates a new PermissionService
func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

func (s *PermissionService) isElevated(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleEditor
}

// CanCreate reports whether the principal may create content.
// Every authenticated role may draft; anonymous callers may not.
func (s *PermissionService) CanCreate(p domain.Principal) bool {
	return !p.IsZero() && p.Role.Valid()
}

// CanEdit reports whether the principal may edit the given post:
// ADMIN, EDITOR and REVIEWER always, everyone else only their own posts.
func (s *PermissionService) CanEdit(p domain.Principal, post *domain.Post) bool {
	if p.IsZero() || post == nil {
		return false
	}
	if s.isElevated(p.Role) || p.Role == domain.RoleReviewer {
		return true
	}
	return post.CreatedByID == p.ID
}

// CanPublish reports whether the principal may publish or unpublish content
func (s *PermissionService) CanPublish(p domain.Principal) bool {
	return !p.IsZero() && s.isElevated(p.Role)
}

// CanReview reports whether the principal may approve or reject submissions.
// ADMIN only: the REVIEWER role edits and submits but does not decide.
func (s *PermissionService) CanReview(p domain.Principal) bool {
	return !p.IsZero() && p.Role == domain.RoleAdmin
}

// CanDelete reports whether the principal may delete the post directly.
// ADMIN and EDITOR always; the creator only while the post has not been
// published. Published posts go through the deletion request flow.
func (s *PermissionService) CanDelete(p domain.Principal, post *domain.Post) bool {
	if p.IsZero() || post == nil {
		return false
	}
	if s.isElevated(p.Role) {
		return true
	}
	if post.CreatedByID != p.ID {
		return false
	}
	return post.Status == domain.StatusDraft || post.Status == domain.StatusUnderReview
}

// HasDashboardAccess reports whether the principal may use the editorial
// dashboard (listings, history, pending reviews)
func (s *PermissionService) HasDashboardAccess(p domain.Principal) bool {
	if p.IsZero() {
		return false
	}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleEditor, domain.RoleReviewer:
		return true
	}
	return false
}
