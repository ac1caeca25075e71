package models

import "time"

// TerraformTemplate is one stored configuration template, addressed by the
// (cloud_id, resource_type, module_version) triple.
type TerraformTemplate struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	CloudID       string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_tf_templates_key" json:"cloud_id"`
	ResourceType  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_tf_templates_key" json:"resource_type"`
	ModuleVersion string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_tf_templates_key" json:"module_version"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (TerraformTemplate) TableName() string { return "tf_templates" }
