// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Converts a FormDef plus the current values and errors into plain,
//   accessible markup.  Each input gets id="fld-{name}", sits in a
//   <div class="form-field">, and is followed by its error text when the
//   field has one.  Inputs with an error carry aria-invalid and point at the
//   message with aria-describedby.
//
//   The renderer never validates; it displays whatever errors the caller
//   passes in.  No HTML5 constraint attributes are emitted so the server
//   remains the only judge of validity.
//
//   Output is returned as template.HTML so the page template does not
//   double-escape it.  Every dynamic value goes through html.EscapeString.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
)

// RenderOptions carries the per-request state shown in the form.
type RenderOptions struct {
	Values   map[string]string // Current field values.
	Errors   map[string]string // Error message per field; absent means none.
	CSRF     string            // Token for the hidden csrf_token input.
	Disabled bool              // True while a submission is in flight.
}

// RenderForm returns the markup for fd's fields, the hidden CSRF input, and
// the submit button.  The surrounding <form> element belongs to the page.
func RenderForm(fd *FormDef, opts RenderOptions) (template.HTML, error) {
	var b strings.Builder
	b.WriteString(`<div class="event-form">` + "\n")

	for i := range fd.Fields {
		if err := writeField(&b, &fd.Fields[i], opts); err != nil {
			return "", err
		}
	}

	b.WriteString(`<input type="hidden" name="csrf_token" value="` + html.EscapeString(opts.CSRF) + `">` + "\n")

	label := fd.Submit
	disabled := ""
	if opts.Disabled {
		label, disabled = fd.Busy, ` disabled`
	}
	b.WriteString(`<button type="submit" class="btn-primary"` + disabled + `>` + html.EscapeString(label) + `</button>` + "\n")

	b.WriteString(`</div>`)
	return template.HTML(b.String()), nil
}

// writeField emits one labelled control and its error line.
func writeField(b *strings.Builder, f *FieldDef, opts RenderOptions) error {
	name := html.EscapeString(f.Name)
	id := "fld-" + name
	val := opts.Values[f.Name]
	msg, invalid := opts.Errors[f.Name]

	b.WriteString(`<div class="form-field`)
	if invalid {
		b.WriteString(` has-error`)
	}
	b.WriteString(`">` + "\n")
	b.WriteString(`<label for="` + id + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	attrs := `id="` + id + `" name="` + name + `"`
	if f.Placeholder != "" {
		attrs += ` placeholder="` + html.EscapeString(f.Placeholder) + `"`
	}
	if invalid {
		attrs += ` aria-invalid="true" aria-describedby="` + id + `-error"`
	}
	if opts.Disabled {
		attrs += ` readonly`
	}

	switch f.Type {
	case "text", "url":
		b.WriteString(`<input ` + attrs + ` type="` + f.Type + `" value="` + html.EscapeString(val) + `">` + "\n")
	case "textarea":
		rows := f.Rows
		if rows == 0 {
			rows = 4
		}
		b.WriteString(`<textarea ` + attrs + ` rows="` + strconv.Itoa(rows) + `">` + html.EscapeString(val) + `</textarea>` + "\n")
	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	if invalid {
		b.WriteString(`<span class="error" id="` + id + `-error" role="alert">` + html.EscapeString(msg) + `</span>` + "\n")
	}
	b.WriteString(`</div>` + "\n")
	return nil
}
