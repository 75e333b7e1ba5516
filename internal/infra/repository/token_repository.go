package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type GormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) (*GormTokenRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormTokenRepository{db: db}, nil
}

func (r *GormTokenRepository) Store(ctx context.Context, token domain.AuthToken) error {
	model := toAuthTokenModel(token)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormTokenRepository) Get(ctx context.Context, token string) (domain.AuthToken, error) {
	var model AuthTokenModel
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AuthToken{}, domain.ErrNotFound
		}
		return domain.AuthToken{}, err
	}
	return model.toDomain(), nil
}

func (r *GormTokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&AuthTokenModel{}).
		Where("token = ? AND revoked = ?", token, false).
		Update("revoked", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&AuthTokenModel{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// PurgeExpired deletes tokens that are past their expiry or already revoked.
func (r *GormTokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked = ?", time.Now().UTC(), true).
		Delete(&AuthTokenModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
