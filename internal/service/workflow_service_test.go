package service

import (
	"testing"

	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSubmitAndApprove(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "Review Me")
	assert.Equal(t, domain.StatusDraft, draft.Status)
	assert.EqualValues(t, 1, historyCount(t, env, draft.ID), "creation leaves one history entry")

	submitted, err := env.workflow.Submit(draft.ID, creator)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, submitted.Status)
	assert.Equal(t, draft.Version+1, submitted.Version)

	approved, err := env.workflow.Approve(draft.ID, "ship it", admin)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, approved.Status)
	assert.NotNil(t, approved.PublishedAt)
	assert.Equal(t, "ship it", approved.ReviewComment)
	assert.NotNil(t, approved.ReviewedAt)

	assert.EqualValues(t, 3, historyCount(t, env, draft.ID), "one entry per mutation")
}

func TestSubmitOnlyByCreator(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	other := seedUser(t, env.db, "other@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "Mine")

	_, err := env.workflow.Submit(draft.ID, other)
	assert.ErrorIs(t, err, common.ErrForbidden)

	// even an admin does not submit on the creator's behalf
	_, err = env.workflow.Submit(draft.ID, admin)
	assert.ErrorIs(t, err, common.ErrForbidden)

	// denial leaves no trace
	assert.EqualValues(t, 1, historyCount(t, env, draft.ID))
	post, err := env.posts.GetPost(draft.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, post.Status)
	assert.Equal(t, draft.Version, post.Version)
}

func TestUnsubmitReturnsToDraft(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	other := seedUser(t, env.db, "other@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "On Second Thought")
	_, err := env.workflow.Submit(draft.ID, creator)
	assert.NoError(t, err)

	_, err = env.workflow.Unsubmit(draft.ID, other)
	assert.ErrorIs(t, err, common.ErrForbidden, "unsubmit is creator-only")

	back, err := env.workflow.Unsubmit(draft.ID, creator)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, back.Status)
}

func TestReviewRequiresAdmin(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	editor := seedUser(t, env.db, "editor@example.com", domain.RoleEditor)
	reviewer := seedUser(t, env.db, "reviewer@example.com", domain.RoleReviewer)

	draft := createDraft(t, env, creator, "Pending")
	_, err := env.workflow.Submit(draft.ID, creator)
	assert.NoError(t, err)

	_, err = env.workflow.Approve(draft.ID, "", editor)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = env.workflow.Approve(draft.ID, "", reviewer)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = env.workflow.Reject(draft.ID, "nope", reviewer)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestRejectRequiresComment(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "Needs Work")
	_, err := env.workflow.Submit(draft.ID, creator)
	assert.NoError(t, err)

	_, err = env.workflow.Reject(draft.ID, "", admin)
	assert.ErrorIs(t, err, common.ErrValidation)

	rejected, err := env.workflow.Reject(draft.ID, "unsourced claims", admin)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "unsourced claims", rejected.ReviewComment)
	assert.Nil(t, rejected.PublishedAt, "rejection never publishes")
}

func TestRejectedRoundTrip(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "Second Chance")
	_, err := env.workflow.Submit(draft.ID, creator)
	assert.NoError(t, err)
	_, err = env.workflow.Reject(draft.ID, "fix the intro", admin)
	assert.NoError(t, err)

	// rejected posts cannot be resubmitted directly
	_, err = env.workflow.Submit(draft.ID, creator)
	assert.ErrorIs(t, err, common.ErrConflict)

	back, err := env.workflow.RevertToDraft(draft.ID, creator)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, back.Status)

	resubmitted, err := env.workflow.Submit(draft.ID, creator)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, resubmitted.Status)
}

func TestIllegalTransitions(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "Stuck")

	// approve needs UNDER_REVIEW
	_, err := env.workflow.Approve(draft.ID, "", admin)
	assert.ErrorIs(t, err, common.ErrConflict)

	// unsubmit needs UNDER_REVIEW
	_, err = env.workflow.Unsubmit(draft.ID, creator)
	assert.ErrorIs(t, err, common.ErrConflict)

	// unpublish needs PUBLISHED
	_, err = env.workflow.Unpublish(draft.ID, admin)
	assert.ErrorIs(t, err, common.ErrConflict)

	// nothing was written
	assert.EqualValues(t, 1, historyCount(t, env, draft.ID))
	post, err := env.posts.GetPost(draft.ID)
	assert.NoError(t, err)
	assert.Equal(t, draft.Version, post.Version)
}

func TestPublishedAtSetExactlyOnce(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	post := publishedPost(t, env, creator, admin, "Evergreen")
	first := post.PublishedAt
	assert.NotNil(t, first)

	unpublished, err := env.workflow.Unpublish(post.ID, admin)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, unpublished.Status)
	assert.NotNil(t, unpublished.PublishedAt, "unpublish preserves publishedAt")
	assert.True(t, unpublished.PublishedAt.Equal(*first))

	republished, err := env.workflow.Publish(post.ID, admin)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, republished.Status)
	assert.True(t, republished.PublishedAt.Equal(*first), "republish keeps the original timestamp")
}

func TestUnpublishAdminOnly(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)
	editor := seedUser(t, env.db, "editor@example.com", domain.RoleEditor)

	post := publishedPost(t, env, creator, admin, "Retractable")

	_, err := env.workflow.Unpublish(post.ID, editor)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.workflow.Unpublish(post.ID, admin)
	assert.NoError(t, err)
}

func TestDirectPublishAndArchive(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	editor := seedUser(t, env.db, "editor@example.com", domain.RoleEditor)

	draft := createDraft(t, env, creator, "Breaking News")

	_, err := env.workflow.Publish(draft.ID, creator)
	assert.ErrorIs(t, err, common.ErrForbidden)

	published, err := env.workflow.Publish(draft.ID, editor)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	archived, err := env.workflow.Archive(draft.ID, editor)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, archived.Status)

	// archived content can be brought back by an elevated role
	restored, err := env.workflow.Publish(draft.ID, editor)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, restored.Status)
}

func TestVersionMonotonicity(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "Counted")
	v := draft.Version

	steps := []func() (*domain.PostResponse, error){
		func() (*domain.PostResponse, error) { return env.workflow.Submit(draft.ID, creator) },
		func() (*domain.PostResponse, error) { return env.workflow.Approve(draft.ID, "", admin) },
		func() (*domain.PostResponse, error) { return env.workflow.Unpublish(draft.ID, admin) },
		func() (*domain.PostResponse, error) { return env.workflow.Publish(draft.ID, admin) },
		func() (*domain.PostResponse, error) { return env.workflow.Archive(draft.ID, admin) },
	}
	for i, step := range steps {
		post, err := step()
		assert.NoError(t, err, "step %d", i)
		assert.Equal(t, v+1, post.Version, "step %d bumps version once", i)
		v = post.Version
	}

	// creation + five transitions
	assert.EqualValues(t, 6, historyCount(t, env, draft.ID))
}
