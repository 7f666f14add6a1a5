package repository

import (
	"context"

	"github.com/timmy/memerator/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles user account operations.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := gorm.G[domain.User](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := gorm.G[domain.User](r.db).Where("username = ?", username).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername reports whether the username is taken.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	count, err := gorm.G[domain.User](r.db).Where("username = ?", username).Count(ctx, "*")
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateFirstAdmin inserts user and marks it admin when no other account exists.
// The insert and the check share one transaction; on postgres the table is locked first.
func (r *UserRepository) CreateFirstAdmin(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE " + domain.User{}.TableName() + " IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		// Writing first takes sqlite's write lock before the read.
		user.IsAdmin = false
		if err := gorm.G[domain.User](tx).Create(ctx, user); err != nil {
			return err
		}
		others, err := gorm.G[domain.User](tx).Where("id <> ?", user.ID).Count(ctx, "*")
		if err != nil {
			return err
		}
		if others > 0 {
			return nil
		}
		if _, err := gorm.G[domain.User](tx).Where("id = ?", user.ID).Update(ctx, "is_admin", true); err != nil {
			return err
		}
		user.IsAdmin = true
		return nil
	})
}

// UpdateCredits sets the credit balance of a user.
func (r *UserRepository) UpdateCredits(ctx context.Context, id string, credits int) error {
	rows, err := gorm.G[domain.User](r.db).Where("id = ?", id).Update(ctx, "credits", credits)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
