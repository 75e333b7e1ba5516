package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type GormMaintenanceRepository struct {
	db *gorm.DB
}

func NewGormMaintenanceRepository(db *gorm.DB) (*GormMaintenanceRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormMaintenanceRepository{db: db}, nil
}

// WipeEngineData clears operations and everything derived from them, for all
// users. Accounts, roles, and tokens stay untouched.
func (r *GormMaintenanceRepository) WipeEngineData(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&ClosedPositionModel{},
			&MonthlyResultModel{},
			&PortfolioEntryModel{},
			&OperationModel{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
