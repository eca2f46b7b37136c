package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/migration"
	"github.com/quillpress/quillpress-backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDBSeq makes each test's in-memory database name unique
var testDBSeq atomic.Uint64

// setupTestDB opens an in-memory store with the full schema. TranslateError
// matters: slug uniqueness handling depends on gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache database so every pooled connection sees the same
	// schema; a bare ":memory:" gives each connection its own empty database.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_fk=1", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// sqlite only honors the schema's ON DELETE CASCADE with this pragma
	db.Exec("PRAGMA foreign_keys = ON")
	if err := migration.Run(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

type testEnv struct {
	db        *gorm.DB
	posts     PostService
	workflow  WorkflowService
	revisions RevisionService
	deletions DeletionService
	history   *HistoryService
	perms     *PermissionService

	postRepo    repository.PostRepository
	historyRepo repository.PostHistoryRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	postRepo := repository.NewPostRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	requestRepo := repository.NewDeletionRequestRepository(db)
	historyRepo := repository.NewPostHistoryRepository(db)
	authorRepo := repository.NewAuthorRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	perms := NewPermissionService()
	history := NewHistoryService(historyRepo)

	return &testEnv{
		db:          db,
		posts:       NewPostService(db, postRepo, authorRepo, categoryRepo, history, perms, nil),
		workflow:    NewWorkflowService(db, postRepo, history, perms),
		revisions:   NewRevisionService(db, postRepo, revisionRepo, categoryRepo, history, perms),
		deletions:   NewDeletionService(db, postRepo, requestRepo, perms),
		history:     history,
		perms:       perms,
		postRepo:    postRepo,
		historyRepo: historyRepo,
	}
}

func seedUser(t *testing.T, db *gorm.DB, email string, role domain.Role) domain.Principal {
	t.Helper()
	user := &domain.User{Email: email, Username: email, Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return domain.Principal{ID: user.ID, Email: email, Role: role}
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *domain.Category {
	t.Helper()
	cat := &domain.Category{Title: name, Slug: GenerateSlug(name)}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("failed to seed category %s: %v", name, err)
	}
	return cat
}

// createDraft makes a fresh DRAFT post owned by the given principal
func createDraft(t *testing.T, env *testEnv, p domain.Principal, title string) *domain.PostResponse {
	t.Helper()
	post, err := env.posts.CreatePost(&domain.CreatePostRequest{
		Title:   title,
		Content: "Some body copy for " + title,
	}, p)
	if err != nil {
		t.Fatalf("failed to create draft %q: %v", title, err)
	}
	return post
}

// publishedPost walks a draft through submit and approval
func publishedPost(t *testing.T, env *testEnv, creator, admin domain.Principal, title string) *domain.PostResponse {
	t.Helper()
	draft := createDraft(t, env, creator, title)
	if _, err := env.workflow.Submit(draft.ID, creator); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	post, err := env.workflow.Approve(draft.ID, "looks good", admin)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	return post
}

func historyCount(t *testing.T, env *testEnv, postID uint64) int64 {
	t.Helper()
	count, err := env.historyRepo.CountByPostID(postID)
	if err != nil {
		t.Fatalf("history count failed: %v", err)
	}
	return count
}
