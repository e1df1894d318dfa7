// fs.go holds a tiny helper for walking a filesystem when template glob
// patterns such as “**/*.html” are not available in the Go standard library.
// The key export is CollectHTML, which returns every .html path under a
// directory of an fs.FS, typically an embed.FS shipped with a component.
package theme

import (
	"io/fs"
	"strings"
)

// CollectHTML walks root inside fsys and returns every *.html path, sorted
// lexically, ready for template.ParseFS.
//
//	files, _ := CollectHTML(assets, "templates")
//	tpl.ParseFS(assets, files...)
func CollectHTML(fsys fs.FS, root string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
