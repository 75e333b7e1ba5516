package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type GormClosedPositionRepository struct {
	db *gorm.DB
}

func NewGormClosedPositionRepository(db *gorm.DB) (*GormClosedPositionRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormClosedPositionRepository{db: db}, nil
}

func (r *GormClosedPositionRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&ClosedPositionModel{}).Error
}

func (r *GormClosedPositionRepository) SaveAll(ctx context.Context, positions []domain.ClosedPosition) error {
	if len(positions) == 0 {
		return nil
	}

	models := make([]ClosedPositionModel, len(positions))
	for i, pos := range positions {
		models[i] = toClosedPositionModel(pos)
	}
	return r.db.WithContext(ctx).CreateInBatches(&models, 200).Error
}

func (r *GormClosedPositionRepository) List(ctx context.Context, userID int64) ([]domain.ClosedPosition, error) {
	var models []ClosedPositionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("close_date ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	positions := make([]domain.ClosedPosition, len(models))
	for i, model := range models {
		positions[i] = model.toDomain()
	}
	return positions, nil
}
