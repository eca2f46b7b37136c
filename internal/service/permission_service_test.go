package service

import (
	"testing"

	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func principal(id uint64, role domain.Role) domain.Principal {
	return domain.Principal{ID: id, Email: "user@example.com", Role: role}
}

func TestCanCreate(t *testing.T) {
	perms := NewPermissionService()

	assert.True(t, perms.CanCreate(principal(1, domain.RoleAdmin)))
	assert.True(t, perms.CanCreate(principal(2, domain.RoleEditor)))
	assert.True(t, perms.CanCreate(principal(3, domain.RoleReviewer)))
	assert.True(t, perms.CanCreate(principal(4, domain.RoleViewer)))

	assert.False(t, perms.CanCreate(domain.Principal{}), "anonymous cannot create")
	assert.False(t, perms.CanCreate(principal(5, domain.Role("SUPERUSER"))), "unknown role cannot create")
}

func TestCanEdit(t *testing.T) {
	perms := NewPermissionService()
	post := &domain.Post{ID: 10, CreatedByID: 4, Status: domain.StatusDraft}

	assert.True(t, perms.CanEdit(principal(1, domain.RoleAdmin), post))
	assert.True(t, perms.CanEdit(principal(2, domain.RoleEditor), post))
	assert.True(t, perms.CanEdit(principal(3, domain.RoleReviewer), post))
	assert.True(t, perms.CanEdit(principal(4, domain.RoleViewer), post), "creator edits own post")

	assert.False(t, perms.CanEdit(principal(5, domain.RoleViewer), post), "stranger cannot edit")
	assert.False(t, perms.CanEdit(domain.Principal{}, post))
	assert.False(t, perms.CanEdit(principal(1, domain.RoleAdmin), nil))
}

func TestCanPublishAndReview(t *testing.T) {
	perms := NewPermissionService()

	assert.True(t, perms.CanPublish(principal(1, domain.RoleAdmin)))
	assert.True(t, perms.CanPublish(principal(2, domain.RoleEditor)))
	assert.False(t, perms.CanPublish(principal(3, domain.RoleReviewer)))
	assert.False(t, perms.CanPublish(principal(4, domain.RoleViewer)))
	assert.False(t, perms.CanPublish(domain.Principal{}))

	// Only ADMIN decides reviews; REVIEWER prepares but does not approve
	assert.True(t, perms.CanReview(principal(1, domain.RoleAdmin)))
	assert.False(t, perms.CanReview(principal(2, domain.RoleEditor)))
	assert.False(t, perms.CanReview(principal(3, domain.RoleReviewer)))
	assert.False(t, perms.CanReview(principal(4, domain.RoleViewer)))
}

func TestCanDelete(t *testing.T) {
	perms := NewPermissionService()

	for _, status := range []domain.PostStatus{
		domain.StatusDraft, domain.StatusUnderReview,
		domain.StatusPublished, domain.StatusRejected, domain.StatusArchived,
	} {
		post := &domain.Post{ID: 10, CreatedByID: 4, Status: status}
		assert.True(t, perms.CanDelete(principal(1, domain.RoleAdmin), post), "admin deletes %s", status)
		assert.True(t, perms.CanDelete(principal(2, domain.RoleEditor), post), "editor deletes %s", status)
		assert.False(t, perms.CanDelete(principal(5, domain.RoleViewer), post), "stranger never deletes %s", status)
	}

	creator := principal(4, domain.RoleViewer)
	assert.True(t, perms.CanDelete(creator, &domain.Post{CreatedByID: 4, Status: domain.StatusDraft}))
	assert.True(t, perms.CanDelete(creator, &domain.Post{CreatedByID: 4, Status: domain.StatusUnderReview}))
	assert.False(t, perms.CanDelete(creator, &domain.Post{CreatedByID: 4, Status: domain.StatusPublished}),
		"published posts go through the deletion request flow")
	assert.False(t, perms.CanDelete(creator, &domain.Post{CreatedByID: 4, Status: domain.StatusRejected}))
	assert.False(t, perms.CanDelete(creator, &domain.Post{CreatedByID: 4, Status: domain.StatusArchived}))
}

func TestHasDashboardAccess(t *testing.T) {
	perms := NewPermissionService()

	assert.True(t, perms.HasDashboardAccess(principal(1, domain.RoleAdmin)))
	assert.True(t, perms.HasDashboardAccess(principal(2, domain.RoleEditor)))
	assert.True(t, perms.HasDashboardAccess(principal(3, domain.RoleReviewer)))
	assert.False(t, perms.HasDashboardAccess(principal(4, domain.RoleViewer)))
	assert.False(t, perms.HasDashboardAccess(domain.Principal{}))
}
