package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sims-go-api/internal/models"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

// UsernameOrEmailTaken runs the uniqueness probe as a single query so the
// caller cannot tell which of the two fields collided.
func (r *userRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}
