package models

import (
	"fmt"
	"strconv"
)

// SecurityGroupRule is one ingress rule attached to a resource request,
// read from the per-(cloud, resource_type) sg_ingress view.
type SecurityGroupRule struct {
	ID          int64  `gorm:"column:id" json:"id,omitempty"`
	RequestID   int64  `gorm:"column:request_id" json:"request_id"`
	FromPort    int    `gorm:"column:from_port" json:"from_port"`
	ToPort      int    `gorm:"column:to_port" json:"to_port"`
	Protocol    string `gorm:"column:protocol" json:"protocol"`
	CIDR        string `gorm:"column:cidr" json:"cidr"`
	Description string `gorm:"column:description" json:"description,omitempty"`
}

// ResourceData is the row image of a resource request: a flat column map
// from the request view, immutable for the duration of one generation run.
// Views expose heterogeneous columns per resource type, so the shape stays
// dynamic; the accessors below cover the columns every view shares.
type ResourceData map[string]any

// ModuleVersion returns the module_version attribute, or "" when absent.
func (d ResourceData) ModuleVersion() string {
	return d.stringAttr("module_version")
}

// Name returns the name attribute, falling back to resource-{requestID}.
func (d ResourceData) Name(requestID int64) string {
	if n := d.stringAttr("name"); n != "" {
		return n
	}
	return fmt.Sprintf("resource-%d", requestID)
}

// GitLabProjectID returns the gitlab_project_id attribute when present.
func (d ResourceData) GitLabProjectID() (int64, bool) {
	v, ok := d["gitlab_project_id"]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

func (d ResourceData) stringAttr(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
