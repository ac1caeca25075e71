package models

import (
	"time"

	"gorm.io/datatypes"
)

// Status values for a generation attempt. STARTED is written before any
// lookup; exactly one terminal write follows per attempt.
const (
	StatusStarted = "STARTED"
	StatusFailed  = "FAILED"
	StatusSuccess = "SUCCESS"
)

// GenerationStatus journals the lifecycle of one generation request. The
// table holds at most one row per apex_request_id; a retried generation
// overwrites the existing row instead of inserting a second one.
type GenerationStatus struct {
	ApexRequestID   int64          `gorm:"primaryKey;autoIncrement:false" json:"apex_request_id"`
	Username        string         `gorm:"type:varchar(128);index;not null" json:"username"`
	CloudID         string         `gorm:"type:varchar(32);not null" json:"cloud_id"`
	ResourceType    string         `gorm:"type:varchar(64);not null" json:"resource_type"`
	Status          string         `gorm:"type:varchar(16);not null" json:"status"`
	Message         string         `gorm:"type:text" json:"message"`
	MergeRequestURL string         `gorm:"type:text" json:"merge_request_url,omitempty"`
	Details         datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      *time.Time     `json:"finished_at,omitempty"`
}

func (GenerationStatus) TableName() string { return "generation_statuses" }
