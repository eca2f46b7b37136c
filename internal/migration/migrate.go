package migration

import (
	"github.com/quillpress/quillpress-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for all content workflow tables.
// Order matters: referenced tables first so foreign keys resolve.
// Cascade rules for owned substructures (tags, FAQs, views, history)
// are declared on the models; no manual pre-delete clearing anywhere.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Author{},
		&domain.Category{},
		&domain.Post{},
		&domain.PostTag{},
		&domain.FAQ{},
		&domain.PostView{},
		&domain.Revision{},
		&domain.RevisionTag{},
		&domain.RevisionFAQ{},
		&domain.DeletionRequest{},
		&domain.PostHistory{},
	)
}
