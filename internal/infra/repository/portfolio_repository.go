package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type GormPortfolioRepository struct {
	db *gorm.DB
}

func NewGormPortfolioRepository(db *gorm.DB) (*GormPortfolioRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormPortfolioRepository{db: db}, nil
}

func (r *GormPortfolioRepository) Upsert(ctx context.Context, userID int64, entry domain.PortfolioEntry) error {
	model := toPortfolioEntryModel(userID, entry)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "total_cost", "average_price", "updated_at",
			}),
		}).
		Create(&model).Error
}

func (r *GormPortfolioRepository) List(ctx context.Context, userID int64) ([]domain.PortfolioEntry, error) {
	var models []PortfolioEntryModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ticker ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.PortfolioEntry, len(models))
	for i, model := range models {
		entries[i] = model.toDomain()
	}
	return entries, nil
}

func (r *GormPortfolioRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&PortfolioEntryModel{}).Error
}
