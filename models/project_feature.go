package models

// ProjectFeature is one entry of a project's ordered feature list
type ProjectFeature struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID uint   `json:"project_id" gorm:"column:project_id;not null;index:idx_project_feature_position,priority:1"`
	Position  int    `json:"position" gorm:"column:position;not null;index:idx_project_feature_position,priority:2"`
	Value     string `json:"value" gorm:"column:value;type:text;not null"`
}

// NewProjectFeatures turns a list of values into positioned feature rows
func NewProjectFeatures(values []string) []ProjectFeature {
	features := make([]ProjectFeature, 0, len(values))
	for i, value := range values {
		features = append(features, ProjectFeature{Position: i, Value: value})
	}
	return features
}
