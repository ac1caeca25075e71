// Package renderer turns a stored template string and a resource row into
// generated Terraform configuration text. Rendering is a pure function of
// its inputs; templates get the sprig function library plus the Terraform
// literal helpers from funcs.go, and references to data the row does not
// carry fail the render instead of emitting "<no value>".
package renderer

import (
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
	appErr "github.com/apex-platform/tf-forge/pkg/errors"
)

// Render substitutes data into templateText.
func Render(templateText string, data map[string]any) (string, error) {
	t, err := template.New("terraform").
		Option("missingkey=error").
		Funcs(sprig.HermeticTxtFuncMap()).
		Funcs(Funcs).
		Parse(templateText)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInvalid, "template parse failed")
	}

	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		return "", appErr.Wrap(err, appErr.CodeInvalid, "template render failed")
	}
	return buf.String(), nil
}
