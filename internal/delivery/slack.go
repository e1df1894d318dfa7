// internal/delivery/slack.go
//
// Slack target: post the message straight to the event's own webhook URL.

package delivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/cenkalti/backoff/v5"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/event"
)

// Slack posts events with slack-go's incoming-webhook client.
type Slack struct {
	http  *http.Client
	retry RetryPolicy
	log   *zap.SugaredLogger
}

// NewSlack builds a Slack target.
func NewSlack(client *http.Client, retry RetryPolicy, log *zap.SugaredLogger) *Slack {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.S()
	}
	return &Slack{http: client, retry: retry, log: log}
}

// Deliver implements Deliverer.
func (s *Slack) Deliver(ctx context.Context, ev event.DraftEvent) error {
	msg := WebhookMessage(ev)
	err := s.retry.do(ctx, s.log, "slack", func() error {
		err := slack.PostWebhookCustomHTTPContext(ctx, ev.WebhookURL, s.http, msg)
		if err != nil && !retryableSlack(err) {
			return backoff.Permanent(err)
		}
		return err
	})
	return AsError("slack", err)
}

// WebhookMessage renders ev as a Slack message: the text itself plus a
// context line naming the source.
func WebhookMessage(ev event.DraftEvent) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Text: ev.Message,
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, ev.Message, false, false),
				nil, nil,
			),
			slack.NewContextBlock("",
				slack.NewTextBlockObject(slack.MarkdownType, "Source: `"+ev.SourceID+"`", false, false),
			),
		}},
	}
}

// retryableSlack keeps retrying on rate limits, 5xx, and transport errors.
func retryableSlack(err error) bool {
	var rl *slack.RateLimitedError
	if errors.As(err, &rl) {
		return true
	}
	var sc slack.StatusCodeError
	if errors.As(err, &sc) {
		return sc.Code >= 500
	}
	return true
}
