package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sims-go-api/internal/models"
)

// LoginAttemptRepository persists the authentication audit trail.
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *models.LoginAttempt) error
	ListRecent(ctx context.Context, limit int) ([]models.LoginAttempt, error)
}

type loginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository constructs the login attempt repository.
func NewLoginAttemptRepository(db *gorm.DB) LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (r *loginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *loginAttemptRepository) ListRecent(ctx context.Context, limit int) ([]models.LoginAttempt, error) {
	if limit <= 0 {
		limit = 50
	}

	var attempts []models.LoginAttempt
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}
