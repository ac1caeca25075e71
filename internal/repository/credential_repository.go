package repository

import (
	"context"
	"errors"

	"github.com/apex-platform/tf-forge/internal/models"
	"github.com/apex-platform/tf-forge/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CredentialRepository resolves hosting-service credentials and routing.
// Both lookups degrade to "absent" on store faults; the orchestrator treats
// absent as fatal for the attempt, so a fault still fails the generation,
// just with the NotFound shape the caller can act on.
type CredentialRepository interface {
	GetUserToken(ctx context.Context, username string) (string, bool)
	GetProjectID(ctx context.Context, cloudID, resourceType string, requestID int64) (int64, bool)
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetUserToken(ctx context.Context, username string) (string, bool) {
	var u models.User
	err := r.db.WithContext(ctx).Where("login = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false
	}
	if err != nil {
		logger.L().Error("user token lookup failed", zap.String("username", username), zap.Error(err))
		return "", false
	}
	if u.GitLabToken == "" {
		return "", false
	}
	return u.GitLabToken, true
}

func (r *credentialRepository) GetProjectID(ctx context.Context, cloudID, resourceType string, requestID int64) (int64, bool) {
	views, ok := viewsFor(cloudID, resourceType)
	if !ok {
		return 0, false
	}

	var row struct {
		GitLabProjectID *int64 `gorm:"column:gitlab_project_id"`
	}
	err := r.db.WithContext(ctx).Table(views.Requests).
		Select("gitlab_project_id").
		Where("id = ?", requestID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false
	}
	if err != nil {
		logger.L().Error("project id lookup failed",
			zap.String("cloud_id", cloudID),
			zap.String("resource_type", resourceType),
			zap.Int64("request_id", requestID),
			zap.Error(err),
		)
		return 0, false
	}
	if row.GitLabProjectID == nil || *row.GitLabProjectID == 0 {
		return 0, false
	}
	return *row.GitLabProjectID, true
}
