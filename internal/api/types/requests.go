package types

// GenerateRequest triggers one Terraform generation run. cloud_id is
// restricted to the supported clouds at the schema boundary; the repository
// layer enforces the full (cloud, resource_type) allow-list again.
type GenerateRequest struct {
	Username     string `json:"username" validate:"required"`
	CloudID      string `json:"cloud_id" validate:"required,oneof=aws gcp azure"`
	ResourceType string `json:"resource_type" validate:"required"`
	RequestID    int64  `json:"request_id" validate:"required,gt=0"`
}
