package database

import (
	"context"

	"github.com/rpupo63/portfolio-cms-backend/models"
	"gorm.io/gorm"
)

type ProjectFeatureRepo struct {
	db *gorm.DB
}

func NewProjectFeatureRepo(db *gorm.DB) *ProjectFeatureRepo {
	return &ProjectFeatureRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectFeatureRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByProjectID returns a project's features in list order
func (r *ProjectFeatureRepo) FindByProjectID(ctx context.Context, projectID uint) ([]models.ProjectFeature, error) {
	var features []models.ProjectFeature
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&features).Error
	return features, err
}

// Replace swaps a project's feature list for values, keeping their order
func (r *ProjectFeatureRepo) Replace(ctx context.Context, projectID uint, values []string) error {
	if err := r.DeleteForProject(ctx, projectID); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	features := models.NewProjectFeatures(values)
	for i := range features {
		features[i].ProjectID = projectID
	}
	return r.db.WithContext(ctx).Create(&features).Error
}

// DeleteForProject removes all features of a project
func (r *ProjectFeatureRepo) DeleteForProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectFeature{}).Error
}
