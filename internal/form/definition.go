// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each HTML form is declared in a YAML file shipped with its component:
//   identifier, title, subtitle, submit label, and an ordered field list.
//   Components embed the file and call Parse at init.  Presentation lives
//   here; field rules stay with the data model they protect.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.  Helper
//   comments use short noun phrases.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
type FormDef struct {
	ID       string     `yaml:"id"`       // Component-scoped identifier, e.g. "event/create".
	Title    string     `yaml:"title"`    // Page heading.
	Subtitle string     `yaml:"subtitle"` // Optional line under the heading.
	Submit   string     `yaml:"submit"`   // Submit button label.
	Busy     string     `yaml:"busy"`     // Submit label while a submission is in flight.
	Fields   []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input control.
type FieldDef struct {
	Name        string `yaml:"name"`        // Submission key.  Required.
	Label       string `yaml:"label"`       // Human-readable label.  Required.
	Type        string `yaml:"type"`        // text, url, or textarea.
	Placeholder string `yaml:"placeholder"` // Optional.
	Rows        int    `yaml:"rows"`        // textarea only; 0 means 4.
}

// Names returns the field names in display order.
func (fd *FormDef) Names() []string {
	out := make([]string, len(fd.Fields))
	for i, f := range fd.Fields {
		out[i] = f.Name
	}
	return out
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// Parse reads one YAML definition from fsys and validates its structure.
func Parse(fsys fs.FS, path string) (*FormDef, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseBytes(raw, path)
}

// ParseBytes is Parse for an in-memory document; name is used in errors.
func ParseBytes(raw []byte, name string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var fieldTypes = map[string]bool{"text": true, "url": true, "textarea": true}

// validateFormDef enforces structural rules YAML cannot express.
func validateFormDef(fd *FormDef, name string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", name)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", name)
	}
	if fd.Submit == "" {
		fd.Submit = "Submit"
	}
	if fd.Busy == "" {
		fd.Busy = fd.Submit
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		switch {
		case f.Name == "":
			return fmt.Errorf("form %s: field %d missing 'name'", name, i+1)
		case f.Label == "":
			return fmt.Errorf("form %s: field '%s' missing 'label'", name, f.Name)
		case !fieldTypes[f.Type]:
			return fmt.Errorf("form %s: field '%s' has unsupported type %q", name, f.Name, f.Type)
		case f.Rows < 0:
			return fmt.Errorf("form %s: field '%s' rows cannot be negative", name, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
