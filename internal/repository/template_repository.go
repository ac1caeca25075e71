package repository

import (
	"context"
	"errors"

	"github.com/apex-platform/tf-forge/internal/models"
	appErr "github.com/apex-platform/tf-forge/pkg/errors"
	"gorm.io/gorm"
)

// TemplateRepository fetches stored Terraform templates by their triple key.
type TemplateRepository interface {
	// Find returns ("", nil) when no template matches.
	Find(ctx context.Context, cloudID, resourceType, moduleVersion string) (string, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Find(ctx context.Context, cloudID, resourceType, moduleVersion string) (string, error) {
	var t models.TerraformTemplate
	err := r.db.WithContext(ctx).
		Where("cloud_id = ? AND resource_type = ? AND module_version = ?", cloudID, resourceType, moduleVersion).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeUnavailable, "template lookup failed")
	}
	return t.Content, nil
}
