package database

import (
	"context"
	"errors"
	"time"

	"github.com/rpupo63/portfolio-cms-backend/models"
	"gorm.io/gorm"
)

// ProjectChanges is the full set of columns an update replaces. A nil ImageURL
// leaves the stored image untouched.
type ProjectChanges struct {
	Title        string
	Description  string
	Category     string
	Features     []string
	LiveURL      *string
	ImageAlt     *string
	ImageURL     *string
	DisplayOrder int
	IsActive     bool
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

func (r *ProjectRepo) listing(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Features", orderFeatures).
		Order("display_order ASC").
		Order("created_at DESC").
		Order("id DESC")
}

// FindActive returns the projects visible on the public site
func (r *ProjectRepo) FindActive(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.listing(ctx).Where("is_active = ?", true).Find(&projects).Error
	return projects, err
}

// FindAll returns every project regardless of visibility
func (r *ProjectRepo) FindAll(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.listing(ctx).Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID, or nil if there is none
func (r *ProjectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Preload("Features", orderFeatures).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Count returns the number of stored projects
func (r *ProjectRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}

// Add inserts a new project and its features in one transaction
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(project).Error
	})
}

// Update replaces every editable column of the project and its feature list.
// It reports whether a row with that id existed.
func (r *ProjectRepo) Update(ctx context.Context, id uint, changes ProjectChanges) (bool, error) {
	values := map[string]any{
		"title":         changes.Title,
		"description":   changes.Description,
		"category":      changes.Category,
		"live_url":      changes.LiveURL,
		"image_alt":     changes.ImageAlt,
		"display_order": changes.DisplayOrder,
		"is_active":     changes.IsActive,
		"updated_at":    time.Now(),
	}
	if changes.ImageURL != nil {
		values["image_url"] = *changes.ImageURL
	}

	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Project{}).Where("id = ?", id).Updates(values)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		found = true

		return NewProjectFeatureRepo(tx).Replace(ctx, id, changes.Features)
	})
	return found, err
}

// Delete removes a project and its features by id
func (r *ProjectRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewProjectFeatureRepo(tx).DeleteForProject(ctx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}

func orderFeatures(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
