// internal/service/render.go
package service

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// RenderTemplate substitutes every {{key}} placeholder with record[key].
// Placeholders with no matching key are left verbatim. The template is walked
// in a single pass, so placeholder syntax arriving inside a record value is
// inserted literally and never re-expanded.
func RenderTemplate(template string, record map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := record[key]; ok {
			return value
		}
		return match
	})
}

// ExtractPlaceholders returns the distinct placeholder names of a template in
// order of first appearance.
func ExtractPlaceholders(content string) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
