// internal/delivery/log.go
//
// Log target.  Records the validated event and reports success without
// sending anything.  This is the default until a real transport is enabled.

package delivery

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/event"
)

// Log is the stub Deliverer.
type Log struct{ log *zap.SugaredLogger }

// NewLog returns a Log target.  A nil logger falls back to zap.S().
func NewLog(log *zap.SugaredLogger) *Log {
	if log == nil {
		log = zap.S()
	}
	return &Log{log: log}
}

// Deliver logs the event.  The webhook URL embeds a secret, so only its host
// is written.
func (l *Log) Deliver(_ context.Context, ev event.DraftEvent) error {
	l.log.Infow("event queued",
		"webhook_host", webhookHost(ev.WebhookURL),
		"source_id", ev.SourceID,
		"message_len", len(ev.Message),
	)
	return nil
}

func webhookHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
