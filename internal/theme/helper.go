//
//  internal/theme/helper.go
//
//  Template functions with short, ergonomic names so page authors do not
//  repeat small bits of presentation logic.
//

package theme

import "html/template"

// FuncMap returns the template function map.  asset resolves a theme asset
// name to its URL.
func FuncMap(asset func(string) string) template.FuncMap {
	return template.FuncMap{
		"asset": asset,

		// noteRole maps a notification kind to its ARIA role.  Errors
		// interrupt; success is announced politely.
		"noteRole": func(kind string) string {
			if kind == "error" {
				return "alert"
			}
			return "status"
		},
	}
}
