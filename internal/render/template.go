// Package render expands an alert's message template against the alert's
// own fields, the evaluated SignalReading, and the synthesized direction
// field (spec §4.6). The original used a full Jinja2 engine; spec §9
// narrows the contract to minimal {{variable}} interpolation, so that is
// all this package does.
package render

import (
	"fmt"
	"regexp"
)

var placeholder = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Render expands every "{{field}}" placeholder in tmpl using fields,
// leaving unknown placeholders untouched so a misconfigured alert fails
// loudly in the rendered message rather than silently vanishing.
func Render(tmpl string, fields map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		if v, ok := fields[name]; ok {
			return v
		}
		return match
	})
}

// Merge combines field maps left-to-right; later maps win on key collision.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Float formats a float64 the way the original's SignalReading.__str__
// rounded display values, to 3 decimal places.
func Float(f float64) string {
	return fmt.Sprintf("%.3f", f)
}
