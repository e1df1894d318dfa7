// Package theme holds the visual theme of the event form.  A Theme combines:
//
//   - Name         – the theme name (for example, “lavender”).
//   - Palette      – colours and corner radius used by the stylesheet.
//   - Renderer     – parsed page templates ready for execution.
//   - AssetFunc    – helper injected into templates so they can resolve
//     `{{ asset "theme.css" }}` to a URL.
//
// The stylesheet is generated from the Palette at startup and served from
// memory, so there is no asset pipeline.
package theme

import (
	"html/template"
	"path"
)

// AssetPrefix is where theme assets are served.
const AssetPrefix = "/assets/"

// Palette is the small set of design tokens the form uses.
type Palette struct {
	Primary     string // Buttons, focus ring.
	PrimaryDark string // Button hover, headings.
	Background  string // Page background.
	Paper       string // Card background.
	Error       string // Field error text and error banner.
	Success     string // Success banner.
	Radius      int    // Corner radius in px.
}

// DefaultPalette is the lavender look of the original page.
func DefaultPalette() Palette {
	return Palette{
		Primary:     "#9b87f5",
		PrimaryDark: "#7E69AB",
		Background:  "#f5f5f5",
		Paper:       "#ffffff",
		Error:       "#d32f2f",
		Success:     "#2e7d32",
		Radius:      8,
	}
}

// Theme is returned by Load once templates are parsed and CSS is built.
type Theme struct {
	Name      string
	Palette   Palette
	Renderer  *template.Template
	AssetFunc func(string) string
	css       []byte
}

// New constructs a Theme with an AssetFunc rooted at AssetPrefix.
func New(name string, p Palette, tpl *template.Template) *Theme {
	return &Theme{
		Name:     name,
		Palette:  p,
		Renderer: tpl,
		AssetFunc: func(p string) string {
			return path.Join(AssetPrefix, p)
		},
	}
}

// CSS returns the generated stylesheet.
func (t *Theme) CSS() []byte { return t.css }
