// Package templates holds the placeholder renderer and the message catalog
// used by outreach drafts and automation emails.
package templates

import (
	"fmt"
	"regexp"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render substitutes {{name}} placeholders with stringified values from data.
// A placeholder without a matching key is left verbatim. Pure and idempotent.
func Render(tpl string, data map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		v, ok := data[key]
		if !ok {
			return match
		}
		return fmt.Sprint(v)
	})
}
