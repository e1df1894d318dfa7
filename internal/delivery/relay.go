// internal/delivery/relay.go
//
// Relay target: POST the event as JSON to a message-relay endpoint.
//
// Context
//   The body is {"webhookUrl", "sourceId", "message"}.  The Idempotency-Key
//   is the delivery id from the context, the same across backoff retries
//   and across user retries of one draft, so the relay can drop
//   duplicates.  Transport errors and 5xx responses are retried; any other
//   status of 400 or above is final.
//
//------------------------------------------------------------------------------

package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/event"
)

// HTTPStatusError reports a non-2xx relay response.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e.Status != "" {
		return "relay responded " + e.Status
	}
	return fmt.Sprintf("relay responded %d", e.StatusCode)
}

// Relay posts events to a fixed endpoint.
type Relay struct {
	endpoint string
	token    string
	http     *http.Client
	retry    RetryPolicy
	log      *zap.SugaredLogger
}

// NewRelay builds a Relay.  token is sent as a bearer token when non-empty.
func NewRelay(endpoint, token string, client *http.Client, retry RetryPolicy, log *zap.SugaredLogger) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.S()
	}
	return &Relay{
		endpoint: endpoint,
		token:    token,
		http:     client,
		retry:    retry,
		log:      log,
	}
}

// Deliver implements Deliverer.
func (r *Relay) Deliver(ctx context.Context, ev event.DraftEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return AsError("relay", err)
	}
	key := idOrNew(ctx)

	err = r.retry.do(ctx, r.log, "relay", func() error {
		return r.post(ctx, body, key)
	})
	if err != nil {
		return AsError("relay", err)
	}
	r.log.Debugw("relay accepted event", "source_id", ev.SourceID, "idempotency_key", key)
	return nil
}

func (r *Relay) post(ctx context.Context, body []byte, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500:
		return &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	case resp.StatusCode >= 400:
		return backoff.Permanent(&HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status})
	}
	return nil
}
