package database

import (
	"context"
	"errors"
	"time"

	"github.com/rpupo63/portfolio-cms-backend/models"
	"gorm.io/gorm"
)

type AdminUserRepo struct {
	db *gorm.DB
}

func NewAdminUserRepo(db *gorm.DB) *AdminUserRepo {
	return &AdminUserRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *AdminUserRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByUsername returns the admin with that username, or nil if there is none
func (r *AdminUserRepo) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the admin with that id, or nil if there is none
func (r *AdminUserRepo) FindByID(ctx context.Context, id uint) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureDefault inserts the admin row when the table is empty. hash is only
// called when a row is actually created.
func (r *AdminUserRepo) EnsureDefault(ctx context.Context, username string, hash func() (string, error)) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	passwordHash, err := hash()
	if err != nil {
		return false, err
	}

	user := models.AdminUser{Username: username, PasswordHash: passwordHash}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}

// TouchLastLogin records a successful login
func (r *AdminUserRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", id).Update("last_login", at).Error
}

// UpdatePasswordHash stores a new password hash for the admin
func (r *AdminUserRepo) UpdatePasswordHash(ctx context.Context, id uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", id).Update("password_hash", passwordHash).Error
}
