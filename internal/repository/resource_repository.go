package repository

import (
	"context"
	"errors"

	"github.com/apex-platform/tf-forge/internal/models"
	appErr "github.com/apex-platform/tf-forge/pkg/errors"
	"github.com/apex-platform/tf-forge/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResourceRepository resolves a (cloud, resource_type, request_id) key to the
// resource request row plus its security-group rules.
type ResourceRepository interface {
	// GetResourceData returns (nil, nil, nil) when the pair is not registered
	// or the row does not exist; a store fault on the primary lookup
	// propagates. A fault on the sg_ingress lookup degrades to no rules.
	GetResourceData(ctx context.Context, cloudID, resourceType string, requestID int64) (models.ResourceData, []models.SecurityGroupRule, error)
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) GetResourceData(ctx context.Context, cloudID, resourceType string, requestID int64) (models.ResourceData, []models.SecurityGroupRule, error) {
	views, ok := viewsFor(cloudID, resourceType)
	if !ok {
		logger.L().Warn("unregistered cloud/resource pair rejected",
			zap.String("cloud_id", cloudID),
			zap.String("resource_type", resourceType),
		)
		return nil, nil, nil
	}

	var row map[string]any
	err := r.db.WithContext(ctx).Table(views.Requests).Where("id = ?", requestID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, appErr.Wrap(err, appErr.CodeUnavailable, "resource lookup failed")
	}

	rules := r.sgRules(ctx, views.SGIngress, requestID)
	return models.ResourceData(row), rules, nil
}

// sgRules fetches the associated ingress rules. Any fault is logged and
// treated as "no rules"; the generation may still proceed without them.
func (r *resourceRepository) sgRules(ctx context.Context, view string, requestID int64) []models.SecurityGroupRule {
	var rules []models.SecurityGroupRule
	err := r.db.WithContext(ctx).Table(view).Where("request_id = ?", requestID).Find(&rules).Error
	if err != nil {
		logger.L().Warn("sg_ingress lookup failed, continuing without rules",
			zap.String("view", view),
			zap.Int64("request_id", requestID),
			zap.Error(err),
		)
		return nil
	}
	return rules
}
