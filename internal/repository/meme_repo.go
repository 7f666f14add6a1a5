package repository

import (
	"context"
	"time"

	"github.com/timmy/memerator/internal/domain"
	"gorm.io/gorm"
)

// MemeRepository handles meme data operations.
type MemeRepository struct {
	db *gorm.DB
}

// NewMemeRepository creates a new MemeRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MemeRepository: repository instance bound to db.
func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

// Create inserts a new meme record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meme: meme record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *MemeRepository) Create(ctx context.Context, meme *domain.Meme) error {
	return r.db.WithContext(ctx).Omit("User", "Template").Create(meme).Error
}

// UpdateRender stores new captions and rendered image for an existing meme.
// Topics, audience and ownership are never touched here.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meme: meme carrying the new text0, text1, url and archive fields.
// Returns:
//   - error: non-nil if the update fails or the meme no longer exists.
func (r *MemeRepository) UpdateRender(ctx context.Context, meme *domain.Meme) error {
	meme.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Meme{}).
		Where("id = ?", meme.ID).
		Updates(map[string]interface{}{
			"text0":       meme.Text0,
			"text1":       meme.Text1,
			"url":         meme.URL,
			"storage_key": meme.StorageKey,
			"archive_url": meme.ArchiveURL,
			"updated_at":  meme.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a meme with its template.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meme ID.
// Returns:
//   - *domain.Meme: meme record if found.
//   - error: gorm.ErrRecordNotFound if absent.
func (r *MemeRepository) GetByID(ctx context.Context, id string) (*domain.Meme, error) {
	var meme domain.Meme
	if err := r.db.WithContext(ctx).Preload("Template").First(&meme, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

// ListAll retrieves every meme with its template, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Meme: all meme records.
//   - error: non-nil if the query fails.
func (r *MemeRepository) ListAll(ctx context.Context) ([]domain.Meme, error) {
	memes := []domain.Meme{}
	if err := r.db.WithContext(ctx).
		Preload("Template").
		Order("created_at DESC").
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}
