package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) (*GormUserRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormUserRepository{db: db}, nil
}

// Create inserts a user together with its role associations. Uniqueness is
// checked up front so callers get a distinguishable error instead of a raw
// constraint violation.
func (r *GormUserRepository) Create(ctx context.Context, user domain.User) (int64, error) {
	var model UserModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&UserModel{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrUsernameTaken
		}
		if err := tx.Model(&UserModel{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrEmailTaken
		}

		var roles []RoleModel
		if len(user.Roles) > 0 {
			if err := tx.Where("name IN ?", user.Roles).Find(&roles).Error; err != nil {
				return err
			}
		}

		model = UserModel{
			Username:     user.Username,
			Email:        user.Email,
			FullName:     user.FullName,
			PasswordHash: user.PasswordHash,
			Active:       user.Active,
			Roles:        roles,
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return model.toDomain(), nil
}

func (r *GormUserRepository) GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("username = ? OR email = ?", usernameOrEmail, usernameOrEmail).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return model.toDomain(), nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var models []UserModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}
	return users, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user domain.User) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"username":      user.Username,
			"email":         user.Email,
			"full_name":     user.FullName,
			"password_hash": user.PasswordHash,
			"active":        user.Active,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := UserModel{ID: id}
		if err := tx.Model(&model).Association("Roles").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&model)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *GormUserRepository) AddRole(ctx context.Context, userID int64, role string) (bool, error) {
	var user UserModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, existing := range user.Roles {
		if existing.Name == role {
			return true, nil
		}
	}

	var roleModel RoleModel
	err = r.db.WithContext(ctx).Where("name = ?", role).First(&roleModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrNotFound
		}
		return false, err
	}

	if err := r.db.WithContext(ctx).Model(&user).Association("Roles").Append(&roleModel); err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormUserRepository) RemoveRole(ctx context.Context, userID int64, role string) (bool, error) {
	var user UserModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, existing := range user.Roles {
		if existing.Name == role {
			if err := r.db.WithContext(ctx).Model(&user).Association("Roles").Delete(&existing); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}
