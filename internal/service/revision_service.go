package service

import (
	"errors"
	"time"

	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/internal/repository"
	"gorm.io/gorm"
)

// RevisionService stages edits to published posts. Readers keep seeing the
// live post while an editor works on the revision; publishing the revision
// merges it back in a single transaction.
type RevisionService interface {
	// StartRevision is idempotent: if an active revision already exists for
	// the post it is returned instead of creating a second one.
	StartRevision(postID uint64, p domain.Principal) (*domain.Revision, error)
	GetRevision(id uint64, p domain.Principal) (*domain.Revision, error)
	GetActiveRevision(postID uint64, p domain.Principal) (*domain.Revision, error)
	ListRevisions(postID uint64, p domain.Principal) ([]*domain.Revision, error)
	ListMyRevisions(p domain.Principal) ([]*domain.Revision, error)
	UpdateRevision(id uint64, req *domain.UpdateRevisionRequest, p domain.Principal) (*domain.Revision, error)
	SubmitRevision(id uint64, p domain.Principal) (*domain.Revision, error)
	PublishRevision(id uint64, p domain.Principal) (*domain.PostResponse, error)
	DiscardRevision(id uint64, p domain.Principal) error
}

type revisionService struct {
	db         *gorm.DB
	posts      repository.PostRepository
	revisions  repository.RevisionRepository
	categories repository.CategoryRepository
	history    *HistoryService
	perms      *PermissionService
}

// NewRevisionService creates a new RevisionService
func NewRevisionService(db *gorm.DB, posts repository.PostRepository,
	revisions repository.RevisionRepository, categories repository.CategoryRepository,
	history *HistoryService, perms *PermissionService) RevisionService {
	return &revisionService{
		db:         db,
		posts:      posts,
		revisions:  revisions,
		categories: categories,
		history:    history,
		perms:      perms,
	}
}

func (s *revisionService) StartRevision(postID uint64, p domain.Principal) (*domain.Revision, error) {
	var result *domain.Revision

	err := s.db.Transaction(func(tx *gorm.DB) error {
		postRepo := s.posts.WithTx(tx)
		post, err := postRepo.FindByIDForUpdate(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrPostNotFound
			}
			return err
		}
		if !s.perms.CanEdit(p, post) {
			return common.Forbidden("you don't have permission to revise this post")
		}
		if post.Status != domain.StatusPublished {
			return common.Validation("revisions are only for published posts; edit the post directly")
		}

		// The post row lock serializes concurrent starters, so the
		// active-revision check cannot race with itself.
		revRepo := s.revisions.WithTx(tx)
		existing, err := revRepo.FindActiveByPostIDForUpdate(postID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		result = snapshotPost(post, p.ID)
		return revRepo.Create(result)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}
	return s.reload(result.ID)
}

// snapshotPost deep-copies the post's editable fields into a fresh revision
func snapshotPost(post *domain.Post, creatorID uint64) *domain.Revision {
	rev := &domain.Revision{
		PostID:          post.ID,
		Status:          domain.RevisionDraft,
		Title:           post.Title,
		Slug:            post.Slug,
		MainImage:       post.MainImage,
		FeaturedImage:   post.FeaturedImage,
		Excerpt:         post.Excerpt,
		Content:         post.Content,
		MetaTitle:       post.MetaTitle,
		MetaDescription: post.MetaDescription,
		TocItems:        post.TocItems,
		ShowToc:         post.ShowToc,
		ReadTime:        post.ReadTime,
		AuthorID:        post.AuthorID,
		CreatedByID:     creatorID,
	}
	for _, t := range post.Tags {
		rev.Tags = append(rev.Tags, domain.RevisionTag{Tag: t.Tag})
	}
	rev.Categories = append(rev.Categories, post.Categories...)
	for _, f := range post.FAQs {
		rev.FAQs = append(rev.FAQs, domain.RevisionFAQ{
			Question:     f.Question,
			Answer:       f.Answer,
			DisplayOrder: f.DisplayOrder,
		})
	}
	return rev
}

func (s *revisionService) GetRevision(id uint64, p domain.Principal) (*domain.Revision, error) {
	if !s.perms.HasDashboardAccess(p) {
		return nil, common.Forbidden("dashboard access required")
	}
	return s.reload(id)
}

func (s *revisionService) GetActiveRevision(postID uint64, p domain.Principal) (*domain.Revision, error) {
	if !s.perms.HasDashboardAccess(p) {
		return nil, common.Forbidden("dashboard access required")
	}
	rev, err := s.revisions.FindActiveByPostID(postID)
	if err != nil {
		return nil, common.Internal(err)
	}
	if rev == nil {
		return nil, common.ErrRevisionNotFound
	}
	return rev, nil
}

func (s *revisionService) ListRevisions(postID uint64, p domain.Principal) ([]*domain.Revision, error) {
	if !s.perms.HasDashboardAccess(p) {
		return nil, common.Forbidden("dashboard access required")
	}
	revs, err := s.revisions.FindByPostID(postID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return revs, nil
}

func (s *revisionService) ListMyRevisions(p domain.Principal) ([]*domain.Revision, error) {
	revs, err := s.revisions.FindByCreator(p.ID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return revs, nil
}

func (s *revisionService) UpdateRevision(id uint64, req *domain.UpdateRevisionRequest, p domain.Principal) (*domain.Revision, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.revisions.WithTx(tx)
		// The row lock serializes concurrent editors: a full-row save from an
		// unlocked snapshot would silently revert the other writer's fields.
		rev, err := repo.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrRevisionNotFound
			}
			return err
		}
		if !rev.Status.Active() {
			return common.ErrRevisionNotActive
		}
		// Edit rights follow the underlying post, not the revision's creator:
		// the post's author may always work on a revision someone else started.
		post, err := s.posts.WithTx(tx).FindByID(rev.PostID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrPostNotFound
			}
			return err
		}
		if !s.perms.CanEdit(p, post) {
			return common.Forbidden("you don't have permission to edit this revision")
		}

		applyRevisionPatch(rev, req, p.ID)
		if err := repo.Save(rev); err != nil {
			return err
		}

		if req.Tags != nil {
			if err := repo.ReplaceTags(rev.ID, req.Tags); err != nil {
				return err
			}
		}
		if req.CategoryIDs != nil {
			cats, err := s.categories.FindMany(req.CategoryIDs)
			if err != nil {
				return err
			}
			if err := repo.ReplaceCategories(rev, cats); err != nil {
				return err
			}
		}
		if req.FAQs != nil {
			faqs := make([]domain.RevisionFAQ, len(req.FAQs))
			for i, f := range req.FAQs {
				faqs[i] = domain.RevisionFAQ{
					Question:     f.Question,
					Answer:       f.Answer,
					DisplayOrder: f.DisplayOrder,
				}
			}
			if err := repo.ReplaceFAQs(rev.ID, faqs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}
	return s.reload(id)
}

func applyRevisionPatch(rev *domain.Revision, req *domain.UpdateRevisionRequest, modifierID uint64) {
	if req.Title != nil {
		rev.Title = *req.Title
	}
	if req.Slug != nil {
		rev.Slug = *req.Slug
	}
	if req.MainImage != nil {
		rev.MainImage = *req.MainImage
	}
	if req.FeaturedImage != nil {
		rev.FeaturedImage = *req.FeaturedImage
	}
	if req.Excerpt != nil {
		rev.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		rev.Content = *req.Content
		rev.ReadTime = EstimateReadTime(*req.Content)
	}
	if req.MetaTitle != nil {
		rev.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		rev.MetaDescription = *req.MetaDescription
	}
	if req.TocItems != nil {
		rev.TocItems = *req.TocItems
	}
	if req.ShowToc != nil {
		rev.ShowToc = *req.ShowToc
	}
	if req.AuthorID != nil {
		rev.AuthorID = req.AuthorID
	}
	if req.RevisionNotes != nil {
		rev.RevisionNotes = *req.RevisionNotes
	}
	rev.LastModifiedByID = &modifierID
}

func (s *revisionService) SubmitRevision(id uint64, p domain.Principal) (*domain.Revision, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.revisions.WithTx(tx)
		rev, err := repo.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrRevisionNotFound
			}
			return err
		}
		if rev.Status != domain.RevisionDraft {
			return common.IllegalTransition("submit revision", string(rev.Status))
		}
		if rev.CreatedByID != p.ID && !s.perms.CanPublish(p) {
			return common.Forbidden("only the revision's creator can submit it for review")
		}
		return repo.UpdateStatus(rev.ID, domain.RevisionPendingReview)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}
	return s.reload(id)
}

// PublishRevision merges the revision back onto its post: every editable
// field is overwritten wholesale, the post is forced to PUBLISHED and the
// revision marked APPROVED, all in one transaction. This is the only path
// by which revised content reaches readers.
func (s *revisionService) PublishRevision(id uint64, p domain.Principal) (*domain.PostResponse, error) {
	if !s.perms.CanPublish(p) {
		return nil, common.Forbidden("only admins and editors can publish a revision")
	}

	var postID uint64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		revRepo := s.revisions.WithTx(tx)
		// Locked read: a concurrent discard must not pass the active check
		// alongside this publish.
		rev, err := revRepo.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrRevisionNotFound
			}
			return err
		}
		if !rev.Status.Active() {
			return common.ErrRevisionNotActive
		}

		postRepo := s.posts.WithTx(tx)
		post, err := postRepo.FindByIDForUpdate(rev.PostID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrPostNotFound
			}
			return err
		}

		oldStatus := post.Status
		expected := post.Version
		mergeRevision(post, rev)
		post.LastModifiedByID = &p.ID
		post.Version++

		if err := postRepo.UpdateVersioned(post, expected); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrVersionMismatch
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.ErrSlugTaken
			}
			return err
		}
		if err := postRepo.ReplaceTags(post.ID, rev.TagNames()); err != nil {
			return err
		}
		if err := postRepo.ReplaceCategories(post, rev.Categories); err != nil {
			return err
		}
		faqs := make([]domain.FAQ, len(rev.FAQs))
		for i, f := range rev.FAQs {
			faqs[i] = domain.FAQ{
				Question:     f.Question,
				Answer:       f.Answer,
				DisplayOrder: f.DisplayOrder,
			}
		}
		if err := postRepo.ReplaceFAQs(post.ID, faqs); err != nil {
			return err
		}

		now := time.Now()
		rev.Status = domain.RevisionApproved
		rev.PublishedAt = &now
		rev.LastModifiedByID = &p.ID
		if err := revRepo.Save(rev); err != nil {
			return err
		}

		postID = post.ID
		return s.history.RecordStatusChange(tx, post, p.ID,
			domain.HistoryRevisionPublished, oldStatus, post.Status, "Revision published")
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		return nil, common.Internal(err)
	}

	post, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return post.ToResponse(), nil
}

// mergeRevision overwrites the post's editable scalar fields from the
// revision. publishedAt is stamped only on the first publication.
func mergeRevision(post *domain.Post, rev *domain.Revision) {
	post.Title = rev.Title
	post.Slug = rev.Slug
	post.MainImage = rev.MainImage
	post.FeaturedImage = rev.FeaturedImage
	post.Excerpt = rev.Excerpt
	post.Content = rev.Content
	post.MetaTitle = rev.MetaTitle
	post.MetaDescription = rev.MetaDescription
	post.TocItems = rev.TocItems
	post.ShowToc = rev.ShowToc
	post.ReadTime = rev.ReadTime
	post.AuthorID = rev.AuthorID
	markPublished(post)
}

func (s *revisionService) DiscardRevision(id uint64, p domain.Principal) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.revisions.WithTx(tx)
		rev, err := repo.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrRevisionNotFound
			}
			return err
		}
		if !rev.Status.Active() {
			return common.ErrRevisionNotActive
		}
		post, err := s.posts.WithTx(tx).FindByID(rev.PostID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrPostNotFound
			}
			return err
		}
		if !s.perms.CanEdit(p, post) {
			return common.Forbidden("you don't have permission to discard this revision")
		}
		// Discarded revisions are kept for audit, never deleted
		return repo.UpdateStatus(rev.ID, domain.RevisionDiscarded)
	})
	if err != nil {
		if isBusinessError(err) {
			return err
		}
		return common.Internal(err)
	}
	return nil
}

func (s *revisionService) reload(id uint64) (*domain.Revision, error) {
	rev, err := s.revisions.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRevisionNotFound
		}
		return nil, common.Internal(err)
	}
	return rev, nil
}
