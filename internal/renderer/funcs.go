package renderer

import (
	"fmt"
	"reflect"
	"strings"
	"text/template"
)

// Funcs are the Terraform literal helpers exposed to every template.
var Funcs = template.FuncMap{
	"tfString": tfString,
	"tfList":   tfList,
}

// tfString renders a value as a quoted Terraform string, or the null token
// when the value is absent.
func tfString(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%q", fmt.Sprintf("%v", v))
}

// tfList renders a value as a Terraform list of quoted strings. Accepted
// inputs: a native slice, a stringified bracketed list ("[a, b]"), or a
// single scalar that becomes a one-item list. Empty input yields [].
func tfList(v any) string {
	items := listItems(v)

	quoted := make([]string, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(fmt.Sprintf("%v", item))
		if s == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func listItems(v any) []any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		if strings.HasPrefix(val, "[") && strings.HasSuffix(val, "]") {
			inner := val[1 : len(val)-1]
			if strings.TrimSpace(inner) == "" {
				return nil
			}
			parts := strings.Split(inner, ",")
			items := make([]any, 0, len(parts))
			for _, p := range parts {
				items = append(items, strings.TrimSpace(p))
			}
			return items
		}
		return []any{val}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, rv.Index(i).Interface())
		}
		return items
	}

	return []any{v}
}
