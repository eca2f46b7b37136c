package service

import (
	"testing"

	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCreatePostDefaults(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	cat := seedCategory(t, env.db, "Engineering")

	post, err := env.posts.CreatePost(&domain.CreatePostRequest{
		Title:       "A Guide to Something",
		Content:     "word word word",
		Tags:        []string{"go", "guide"},
		CategoryIDs: []uint64{cat.ID},
		FAQs: []domain.FAQInput{
			{Question: "Why?", Answer: "Because.", DisplayOrder: 1},
		},
	}, creator)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, post.Status)
	assert.Equal(t, "a-guide-to-something", post.Slug)
	assert.Equal(t, 1, post.ReadTime)
	assert.Nil(t, post.PublishedAt)
	assert.ElementsMatch(t, []string{"go", "guide"}, post.Tags)
	assert.Len(t, post.Categories, 1)
	assert.Len(t, post.FAQs, 1)
	assert.Equal(t, creator.ID, post.CreatedByID)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	env := setupEnv(t)

	_, err := env.posts.CreatePost(&domain.CreatePostRequest{
		Title: "Anonymous", Content: "x",
	}, domain.Principal{})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreatePostDirectPublish(t *testing.T) {
	env := setupEnv(t)
	editor := seedUser(t, env.db, "editor@example.com", domain.RoleEditor)
	viewer := seedUser(t, env.db, "viewer@example.com", domain.RoleViewer)

	_, err := env.posts.CreatePost(&domain.CreatePostRequest{
		Title: "Sneaky", Content: "x", Status: domain.StatusPublished,
	}, viewer)
	assert.ErrorIs(t, err, common.ErrForbidden)

	post, err := env.posts.CreatePost(&domain.CreatePostRequest{
		Title: "Announcement", Content: "x", Status: domain.StatusPublished,
	}, editor)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, post.Status)
	assert.NotNil(t, post.PublishedAt)
}

func TestCreatePostOnlyStartsAsDraftOrPublished(t *testing.T) {
	env := setupEnv(t)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)
	viewer := seedUser(t, env.db, "viewer@example.com", domain.RoleViewer)

	// every other status is reached through workflow transitions, which stamp
	// submittedAt and run the guards; creating straight into one skips both
	for _, status := range []domain.PostStatus{
		domain.StatusUnderReview, domain.StatusRejected, domain.StatusArchived,
	} {
		_, err := env.posts.CreatePost(&domain.CreatePostRequest{
			Title: "Shortcut", Content: "x", Status: status,
		}, viewer)
		assert.ErrorIs(t, err, common.ErrValidation, string(status))

		_, err = env.posts.CreatePost(&domain.CreatePostRequest{
			Title: "Shortcut", Content: "x", Status: status,
		}, admin)
		assert.ErrorIs(t, err, common.ErrValidation, string(status))
	}

	post, err := env.posts.CreatePost(&domain.CreatePostRequest{
		Title: "Ordinary", Content: "x", Status: domain.StatusDraft,
	}, viewer)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, post.Status)
}

func TestSlugCollisionGetsSuffix(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)

	first := createDraft(t, env, creator, "Hello World")
	second := createDraft(t, env, creator, "Hello World")
	third := createDraft(t, env, creator, "Hello World")

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
	assert.Equal(t, "hello-world-2", third.Slug)
}

func TestUpdatePostPartialPatch(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)

	draft := createDraft(t, env, creator, "Original Title")

	updated, err := env.posts.UpdatePost(draft.ID, &domain.UpdatePostRequest{
		Title: strPtr("New Title"),
	}, creator)
	assert.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, draft.Content, updated.Content, "unset fields stay put")
	assert.Equal(t, draft.Slug, updated.Slug, "slug does not follow the title")
	assert.Equal(t, draft.Version+1, updated.Version)
	assert.EqualValues(t, 2, historyCount(t, env, draft.ID))
}

func TestUpdatePostRecomputesReadTime(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)

	draft := createDraft(t, env, creator, "Short")
	longBody := ""
	for i := 0; i < 450; i++ {
		longBody += "word "
	}

	updated, err := env.posts.UpdatePost(draft.ID, &domain.UpdatePostRequest{
		Content: &longBody,
	}, creator)
	assert.NoError(t, err)
	assert.Equal(t, 3, updated.ReadTime, "450 words at 200wpm rounds up to 3")
}

func TestUpdatePostVersionConflict(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)

	draft := createDraft(t, env, creator, "Contended")

	// first writer wins
	_, err := env.posts.UpdatePost(draft.ID, &domain.UpdatePostRequest{
		Title:   strPtr("First Edit"),
		Version: draft.Version,
	}, creator)
	assert.NoError(t, err)

	// second writer carries the stale version
	_, err = env.posts.UpdatePost(draft.ID, &domain.UpdatePostRequest{
		Title:   strPtr("Second Edit"),
		Version: draft.Version,
	}, creator)
	assert.ErrorIs(t, err, common.ErrVersionMismatch)

	post, err := env.posts.GetPost(draft.ID)
	assert.NoError(t, err)
	assert.Equal(t, "First Edit", post.Title, "loser mutated nothing")
}

func TestUpdatePostPermissions(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	stranger := seedUser(t, env.db, "stranger@example.com", domain.RoleViewer)
	reviewer := seedUser(t, env.db, "reviewer@example.com", domain.RoleReviewer)

	draft := createDraft(t, env, creator, "Protected")

	_, err := env.posts.UpdatePost(draft.ID, &domain.UpdatePostRequest{
		Title: strPtr("Hijacked"),
	}, stranger)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.posts.UpdatePost(draft.ID, &domain.UpdatePostRequest{
		Title: strPtr("Copyedited"),
	}, reviewer)
	assert.NoError(t, err, "reviewers edit any post")
}

func TestReplaceOwnedSubstructures(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	catA := seedCategory(t, env.db, "Engineering")
	catB := seedCategory(t, env.db, "Design")

	post, err := env.posts.CreatePost(&domain.CreatePostRequest{
		Title:       "Tagged",
		Content:     "x",
		Tags:        []string{"old"},
		CategoryIDs: []uint64{catA.ID},
	}, creator)
	assert.NoError(t, err)

	updated, err := env.posts.UpdatePost(post.ID, &domain.UpdatePostRequest{
		Tags:        []string{"new", "fresh"},
		CategoryIDs: []uint64{catB.ID},
		FAQs: []domain.FAQInput{
			{Question: "Q", Answer: "A", DisplayOrder: 1},
		},
	}, creator)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"new", "fresh"}, updated.Tags, "tags replaced wholesale")
	assert.Len(t, updated.Categories, 1)
	assert.Equal(t, catB.ID, updated.Categories[0].ID)
	assert.Len(t, updated.FAQs, 1)
}

func TestGetPostBySlug(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)

	draft := createDraft(t, env, creator, "Findable")

	found, err := env.posts.GetPostBySlug("findable", "203.0.113.9", "test-agent")
	assert.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	_, err = env.posts.GetPostBySlug("no-such-slug", "203.0.113.9", "test-agent")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestViewCountDedup(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)

	draft := createDraft(t, env, creator, "Popular")

	for i := 0; i < 3; i++ {
		_, err := env.posts.GetPostBySlug(draft.Slug, "203.0.113.9", "test-agent")
		assert.NoError(t, err)
	}
	_, err := env.posts.GetPostBySlug(draft.Slug, "198.51.100.7", "test-agent")
	assert.NoError(t, err)

	post, err := env.posts.GetPost(draft.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, post.ViewCount, "one view per IP per day")
}

func TestSearchPublishedOnly(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	createDraft(t, env, creator, "Secret Gopher Draft")
	publishedPost(t, env, creator, admin, "Public Gopher Story")

	results, err := env.posts.SearchPublished("gopher")
	assert.NoError(t, err)
	assert.Len(t, results, 1, "drafts never leak into search")
	assert.Equal(t, "Public Gopher Story", results[0].Title)

	empty, err := env.posts.SearchPublished("")
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListDashboardFilters(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	editor := seedUser(t, env.db, "editor@example.com", domain.RoleEditor)

	createDraft(t, env, creator, "Alpha Report")
	createDraft(t, env, creator, "Beta Report")
	createDraft(t, env, creator, "Gamma Notes")

	_, _, err := env.posts.ListDashboard(domain.PostListFilter{}, 1, 20, creator)
	assert.ErrorIs(t, err, common.ErrForbidden, "viewers have no dashboard")

	results, meta, err := env.posts.ListDashboard(domain.PostListFilter{
		Status:        domain.StatusDraft,
		TitleContains: "report",
	}, 1, 20, editor)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.EqualValues(t, 2, meta.Total)
}

func TestDeletePostRules(t *testing.T) {
	env := setupEnv(t)
	creator := seedUser(t, env.db, "writer@example.com", domain.RoleViewer)
	admin := seedUser(t, env.db, "admin@example.com", domain.RoleAdmin)

	draft := createDraft(t, env, creator, "Disposable")
	assert.NoError(t, env.posts.DeletePost(draft.ID, creator), "creator deletes own draft")

	_, err := env.posts.GetPost(draft.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	published := publishedPost(t, env, creator, admin, "Permanent")
	err = env.posts.DeletePost(published.ID, creator)
	assert.ErrorIs(t, err, common.ErrForbidden, "published posts need a deletion request")

	assert.NoError(t, env.posts.DeletePost(published.ID, admin), "admins delete anything")
}
