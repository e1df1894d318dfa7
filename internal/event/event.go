// internal/event/event.go
//
// Event form: data model.
//
// Context
//   A RawDraft is whatever the user typed.  A DraftEvent is the same three
//   values after they passed every field rule; only Validate constructs one,
//   so downstream code (the submission controller and every deliverer) can
//   rely on a DraftEvent being valid.
//
//------------------------------------------------------------------------------

package event

import (
	"sort"
	"strings"
)

// Field names one input of the event form.  The string value doubles as
// the JSON key and the HTML input name.
type Field string

const (
	FieldWebhookURL Field = "webhookUrl"
	FieldSourceID   Field = "sourceId"
	FieldMessage    Field = "message"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldWebhookURL, FieldSourceID, FieldMessage}

// Valid reports whether f is one of the known form fields.
func (f Field) Valid() bool {
	switch f {
	case FieldWebhookURL, FieldSourceID, FieldMessage:
		return true
	}
	return false
}

// RawDraft is the in-progress, possibly invalid form record.
type RawDraft struct {
	WebhookURL string `json:"webhookUrl" validate:"url,startswith=https://hooks.slack.com"`
	SourceID   string `json:"sourceId"   validate:"required"`
	Message    string `json:"message"    validate:"min=10"`
}

// Get returns the value of field f, or "" for an unknown field.
func (d RawDraft) Get(f Field) string {
	switch f {
	case FieldWebhookURL:
		return d.WebhookURL
	case FieldSourceID:
		return d.SourceID
	case FieldMessage:
		return d.Message
	}
	return ""
}

// With returns a copy of d with field f replaced.  Unknown fields leave
// the copy unchanged.
func (d RawDraft) With(f Field, value string) RawDraft {
	switch f {
	case FieldWebhookURL:
		d.WebhookURL = value
	case FieldSourceID:
		d.SourceID = value
	case FieldMessage:
		d.Message = value
	}
	return d
}

// DraftEvent is a validated event, ready for delivery.
type DraftEvent struct {
	WebhookURL string `json:"webhookUrl"`
	SourceID   string `json:"sourceId"`
	Message    string `json:"message"`
}

// Draft converts the event back into a RawDraft, e.g. to re-validate it.
func (e DraftEvent) Draft() RawDraft {
	return RawDraft{WebhookURL: e.WebhookURL, SourceID: e.SourceID, Message: e.Message}
}

// FieldErrors maps a field to its user-facing message.  A missing key means
// the field is currently valid.
type FieldErrors map[Field]string

// Fields returns the fields carrying an error, sorted for stable output.
func (fe FieldErrors) Fields() []Field {
	out := make([]Field, 0, len(fe))
	for f := range fe {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy; nil stays nil.
func (fe FieldErrors) Clone() FieldErrors {
	if fe == nil {
		return nil
	}
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// ValidationError wraps FieldErrors and satisfies the error interface so
// callers can tell user input errors from system failures via errors.As.
type ValidationError struct{ Fields FieldErrors }

func (ve *ValidationError) Error() string {
	names := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields.Fields() {
		names = append(names, string(f))
	}
	return "event validation failed: " + strings.Join(names, ", ")
}
