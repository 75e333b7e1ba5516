package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/flaviojulio/ir-app/internal/infra/repository"
)

func ApplyMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&repository.UserModel{},
		&repository.RoleModel{},
		&repository.AuthTokenModel{},
		&repository.OperationModel{},
		&repository.PortfolioEntryModel{},
		&repository.MonthlyResultModel{},
		&repository.ClosedPositionModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
