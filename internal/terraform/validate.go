// Package terraform holds the structural sanity gate applied to rendered
// configuration before it is published. This is a heuristic check, not a
// grammar validator: passing it does not guarantee the configuration plans.
package terraform

import "strings"

// requiredSections: generated configuration must declare at least one of
// these block types to be worth opening a merge request for.
var requiredSections = []string{"resource", "module", "provider", "variable", "output"}

// Result reports the outcome of Validate. Errors carries one message per
// failed check, in check order.
type Result struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Validate runs the independent structural checks; each failure appends its
// own message, so both can be reported at once.
func Validate(content string) Result {
	res := Result{IsValid: true, Errors: []string{}}

	if !strings.Contains(content, "{") || !strings.Contains(content, "}") {
		res.IsValid = false
		res.Errors = append(res.Errors, "configuration contains no Terraform block braces")
	}

	hasSection := false
	for _, section := range requiredSections {
		if strings.Contains(content, section) {
			hasSection = true
			break
		}
	}
	if !hasSection {
		res.IsValid = false
		res.Errors = append(res.Errors, "configuration contains no required Terraform section (resource, module, provider, variable, output)")
	}

	return res
}
