package models

import "time"

// User maps a login to its GitLab access token. Rows are provisioned by an
// external intake process; this service only reads them.
type User struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Login       string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"login"`
	GitLabToken string    `gorm:"column:gitlab_token;type:text;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
