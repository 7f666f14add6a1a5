package repository

import (
	"context"

	"github.com/timmy/memerator/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const templateUpsertBatchSize = 100

// TemplateRepository handles template data operations.
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List returns every stored template ordered by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Template: all templates.
//   - error: non-nil if the query fails.
func (r *TemplateRepository) List(ctx context.Context) ([]domain.Template, error) {
	var templates []domain.Template
	if err := r.db.WithContext(ctx).Order("id").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Count returns the number of stored templates.
func (r *TemplateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Template{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpsertAll inserts templates keyed by catalog ID, leaving rows that already exist untouched.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - templates: catalog entries to store.
// Returns:
//   - int64: number of newly inserted rows.
//   - error: non-nil if the insert fails.
func (r *TemplateRepository) UpsertAll(ctx context.Context, templates []domain.Template) (int64, error) {
	if len(templates) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).CreateInBatches(&templates, templateUpsertBatchSize)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
