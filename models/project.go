package models

import "time"

// Project is a portfolio entry shown on the public site
type Project struct {
	ID           uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string           `json:"title" gorm:"column:title;type:text;not null"`
	Description  string           `json:"description" gorm:"column:description;type:text;not null"`
	Category     string           `json:"category" gorm:"column:category;type:text;not null"`
	LiveURL      *string          `json:"live_url" gorm:"column:live_url;type:text"`
	ImageURL     *string          `json:"image_url" gorm:"column:image_url;type:text"`
	ImageAlt     *string          `json:"image_alt" gorm:"column:image_alt;type:text"`
	DisplayOrder int              `json:"display_order" gorm:"column:display_order;not null;default:0;index:idx_projects_listing,priority:2"`
	IsActive     bool             `json:"is_active" gorm:"column:is_active;not null;index:idx_projects_listing,priority:1"`
	CreatedAt    time.Time        `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	Features     []ProjectFeature `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

// FeatureValues returns the feature list in stored order
func (p Project) FeatureValues() []string {
	values := make([]string, 0, len(p.Features))
	for _, feature := range p.Features {
		values = append(values, feature.Value)
	}
	return values
}
