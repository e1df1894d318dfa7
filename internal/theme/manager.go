package theme

import (
	"fmt"
	"html/template"
	"io/fs"
	"time"
)

// Load parses every template under root in fsys, validates the palette, and
// builds the stylesheet.  Templates are looked up by file base name, e.g.
// "page.html".  noticeTTL is how long the notification banner stays on
// screen.
func Load(name string, p Palette, noticeTTL time.Duration, fsys fs.FS, root string) (*Theme, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}

	files, err := CollectHTML(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("theme %s: walk templates: %w", name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("theme %s: no templates under %s", name, root)
	}

	th := New(name, p, nil)
	tpl, err := template.New(name).Funcs(FuncMap(th.AssetFunc)).ParseFS(fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("theme %s: parse templates: %w", name, err)
	}
	th.Renderer = tpl

	if th.css, err = renderCSS(p, noticeTTL); err != nil {
		return nil, fmt.Errorf("theme %s: render css: %w", name, err)
	}
	return th, nil
}
