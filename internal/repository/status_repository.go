package repository

import (
	"context"

	"github.com/apex-platform/tf-forge/internal/models"
	appErr "github.com/apex-platform/tf-forge/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// historyLimit bounds the status-history endpoint.
const historyLimit = 20

// StatusRepository persists generation status rows keyed by apex_request_id.
type StatusRepository interface {
	// Upsert inserts the row on first occurrence and overwrites the mutable
	// columns on conflict. started_at is only written on insert.
	Upsert(ctx context.Context, s *models.GenerationStatus) error
	ListByUsername(ctx context.Context, username string) ([]models.GenerationStatus, error)
}

type statusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) Upsert(ctx context.Context, s *models.GenerationStatus) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "apex_request_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username",
			"cloud_id",
			"resource_type",
			"status",
			"message",
			"merge_request_url",
			"details",
			"finished_at",
		}),
	}).Create(s).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "status upsert failed")
	}
	return nil
}

func (r *statusRepository) ListByUsername(ctx context.Context, username string) ([]models.GenerationStatus, error) {
	var out []models.GenerationStatus
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("started_at DESC").
		Limit(historyLimit).
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list statuses failed")
	}
	return out, nil
}
