package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/apex-platform/tf-forge/internal/models"
	"github.com/apex-platform/tf-forge/internal/repository"
	"github.com/apex-platform/tf-forge/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// StatusLedger journals generation attempts. Writes are best-effort
// telemetry: a failed ledger write is logged and never blocks or fails the
// generation itself. Reads (History) do surface faults.
type StatusLedger interface {
	Started(ctx context.Context, key StatusKey)
	Finished(ctx context.Context, key StatusKey, status, message, mergeRequestURL string, details any)
	History(ctx context.Context, username string) ([]models.GenerationStatus, error)
}

// StatusKey identifies one generation attempt in the ledger.
type StatusKey struct {
	RequestID    int64
	Username     string
	CloudID      string
	ResourceType string
}

type statusLedger struct {
	repo repository.StatusRepository
}

func NewStatusLedger(repo repository.StatusRepository) StatusLedger {
	return &statusLedger{repo: repo}
}

var _ StatusLedger = (*statusLedger)(nil)

func (l *statusLedger) Started(ctx context.Context, key StatusKey) {
	l.record(ctx, &models.GenerationStatus{
		ApexRequestID: key.RequestID,
		Username:      key.Username,
		CloudID:       key.CloudID,
		ResourceType:  key.ResourceType,
		Status:        models.StatusStarted,
		Message:       "generation started",
		StartedAt:     time.Now().UTC(),
	})
}

func (l *statusLedger) Finished(ctx context.Context, key StatusKey, status, message, mergeRequestURL string, details any) {
	now := time.Now().UTC()
	rec := &models.GenerationStatus{
		ApexRequestID:   key.RequestID,
		Username:        key.Username,
		CloudID:         key.CloudID,
		ResourceType:    key.ResourceType,
		Status:          status,
		Message:         message,
		MergeRequestURL: mergeRequestURL,
		StartedAt:       now,
		FinishedAt:      &now,
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			rec.Details = datatypes.JSON(b)
		}
	}
	l.record(ctx, rec)
}

func (l *statusLedger) record(ctx context.Context, rec *models.GenerationStatus) {
	if err := l.repo.Upsert(ctx, rec); err != nil {
		logger.L().Error("status ledger write failed",
			zap.Int64("apex_request_id", rec.ApexRequestID),
			zap.String("status", rec.Status),
			zap.Error(err),
		)
	}
}

func (l *statusLedger) History(ctx context.Context, username string) ([]models.GenerationStatus, error) {
	return l.repo.ListByUsername(ctx, username)
}
