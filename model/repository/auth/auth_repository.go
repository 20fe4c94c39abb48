package auth

import (
	"context"

	"gorm.io/gorm"

	entity "bizdash/model/entity"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// FindUser returns the user with the given username.
func (r *AuthRepository) FindUser(ctx context.Context, username string) (*entity.AdminUser, error) {
	var u entity.AdminUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns the user with the given id.
func (r *AuthRepository) FindByID(ctx context.Context, id uint) (*entity.AdminUser, error) {
	var u entity.AdminUser
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user with an already hashed password.
func (r *AuthRepository) CreateUser(ctx context.Context, username, hashedPassword string) (*entity.AdminUser, error) {
	u := &entity.AdminUser{Username: username, Password: hashedPassword}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePassword stores a new password hash. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *AuthRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	res := r.db.WithContext(ctx).Model(&entity.AdminUser{}).Where("id = ?", id).Update("password", hashedPassword)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
