package types

import "github.com/apex-platform/tf-forge/internal/gitlab"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Total     int64  `json:"total,omitempty"`
}

// GenerateResponse is the success payload of the generate endpoint.
type GenerateResponse struct {
	Message      string               `json:"message"`
	MergeRequest *gitlab.MergeRequest `json:"merge_request"`
}
