package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type GormMonthlyResultRepository struct {
	db *gorm.DB
}

func NewGormMonthlyResultRepository(db *gorm.DB) (*GormMonthlyResultRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormMonthlyResultRepository{db: db}, nil
}

func (r *GormMonthlyResultRepository) Upsert(ctx context.Context, result domain.MonthlyResult) error {
	model := toMonthlyResultModel(result)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"swing_sales", "swing_cost", "swing_net_gain", "swing_exempt", "swing_tax_due",
				"day_net_gain", "day_tax_due", "day_withheld", "day_payable",
				"swing_loss_carry", "day_loss_carry",
				"darf_code", "darf_period", "darf_amount", "darf_due_date",
				"updated_at",
			}),
		}).
		Create(&model).Error
}

func (r *GormMonthlyResultRepository) List(ctx context.Context, userID int64) ([]domain.MonthlyResult, error) {
	var models []MonthlyResultModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("month ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	results := make([]domain.MonthlyResult, len(models))
	for i, model := range models {
		results[i] = model.toDomain()
	}
	return results, nil
}

func (r *GormMonthlyResultRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&MonthlyResultModel{}).Error
}
