package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type GormRoleRepository struct {
	db *gorm.DB
}

func NewGormRoleRepository(db *gorm.DB) (*GormRoleRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormRoleRepository{db: db}, nil
}

func (r *GormRoleRepository) Create(ctx context.Context, role domain.Role) (int64, error) {
	var model RoleModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&RoleModel{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrRoleExists
		}

		model = RoleModel{Name: role.Name, Description: role.Description}
		return tx.Create(&model).Error
	})
	if err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (r *GormRoleRepository) GetByName(ctx context.Context, name string) (domain.Role, error) {
	var model RoleModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Role{}, domain.ErrNotFound
		}
		return domain.Role{}, err
	}
	return model.toDomain(), nil
}

func (r *GormRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	var models []RoleModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	roles := make([]domain.Role, len(models))
	for i, model := range models {
		roles[i] = model.toDomain()
	}
	return roles, nil
}

// Delete refuses to remove a role that is still assigned to any user.
func (r *GormRoleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model RoleModel
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		var assigned int64
		if err := tx.Table("user_roles").Where("role_model_id = ?", id).Count(&assigned).Error; err != nil {
			return err
		}
		if assigned > 0 {
			return domain.ErrRoleInUse
		}

		return tx.Delete(&model).Error
	})
}
