// internal/event/validate.go
//
// Event form: field validation.
//
// Context
//   The field rules live as go-playground/validator tags on RawDraft.  The
//   validator checks every field, stops at the first failing tag within a
//   field, and reports the tag that failed.  That ordering gives the URL
//   rules their shape: a malformed URL only reports "Invalid URL", and the
//   Slack prefix rule only runs on a well-formed URL.
//
//   Validate never trims or case-folds.  A DraftEvent carries exactly what
//   the user typed.
//
//------------------------------------------------------------------------------

package event

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SlackWebhookPrefix is the scheme and host every webhook URL must start with.
// It must match the startswith tag on RawDraft.WebhookURL.
const SlackWebhookPrefix = "https://hooks.slack.com"

// MinMessageLength is the shortest accepted message, counted in characters.
const MinMessageLength = 10

// User-facing messages, keyed by field and failing tag.
const (
	MsgInvalidURL      = "Invalid URL"
	MsgNotSlackWebhook = "Must be a Slack Webhook URL"
	MsgSourceRequired  = "SourceID is required"
	MsgMessageTooShort = "Message must be at least 10 characters"
)

type ruleKey struct {
	field Field
	tag   string
}

var messages = map[ruleKey]string{
	{FieldWebhookURL, "url"}:        MsgInvalidURL,
	{FieldWebhookURL, "startswith"}: MsgNotSlackWebhook,
	{FieldSourceID, "required"}:     MsgSourceRequired,
	{FieldMessage, "min"}:           MsgMessageTooShort,
}

// v is safe for concurrent use and caches struct metadata after first use.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Validate checks in against every field rule.  With no violations it
// returns the DraftEvent and a nil FieldErrors.  Otherwise it returns a zero
// DraftEvent and every violation found; there is no partial success.
func Validate(in RawDraft) (DraftEvent, FieldErrors) {
	err := v.Struct(in)
	if err == nil {
		return DraftEvent{
			WebhookURL: in.WebhookURL,
			SourceID:   in.SourceID,
			Message:    in.Message,
		}, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable on a programming error (bad tag, non-struct input).
		panic("event: validator misconfigured: " + err.Error())
	}

	errs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		f := Field(fe.Field())
		msg, ok := messages[ruleKey{f, fe.Tag()}]
		if !ok {
			msg = "Invalid input."
		}
		errs[f] = msg
	}
	return DraftEvent{}, errs
}
