package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type GormOperationRepository struct {
	db *gorm.DB
}

func NewGormOperationRepository(db *gorm.DB) (*GormOperationRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormOperationRepository{db: db}, nil
}

func (r *GormOperationRepository) Insert(ctx context.Context, op domain.Operation) (int64, error) {
	model := toOperationModel(op)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (r *GormOperationRepository) Get(ctx context.Context, id, userID int64) (domain.Operation, error) {
	var model OperationModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Operation{}, domain.ErrNotFound
		}
		return domain.Operation{}, err
	}
	return model.toDomain(), nil
}

// List returns the user's operations in matching order: trade date first,
// insertion id as the tie breaker.
func (r *GormOperationRepository) List(ctx context.Context, userID int64) ([]domain.Operation, error) {
	var models []OperationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("trade_date ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	ops := make([]domain.Operation, len(models))
	for i, model := range models {
		ops[i] = model.toDomain()
	}
	return ops, nil
}

func (r *GormOperationRepository) Update(ctx context.Context, op domain.Operation) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&OperationModel{}).
		Where("id = ? AND user_id = ?", op.ID, op.UserID).
		Updates(map[string]interface{}{
			"trade_date": op.TradeDate,
			"ticker":     op.Ticker,
			"side":       string(op.Side),
			"quantity":   op.Quantity,
			"unit_price": op.UnitPrice,
			"fees":       op.Fees,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOperationRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&OperationModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOperationRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&OperationModel{}).Error
}
