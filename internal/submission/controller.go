// internal/submission/controller.go
//
// Event form: submission controller.
//
// Context
//   One Controller backs one mounted form.  It owns the draft, the current
//   field errors, and the notification banner, and it is the only caller of
//   the Deliverer.
//
//   States run Editing → Submitting → Succeeded | Failed → Editing.  The
//   terminal states are passed through within one Submit call; callers see
//   the result in Snapshot().Outcome.
//
// Concurrency
//   A mutex guards every field because HTTP handlers and dismiss timers run
//   on their own goroutines.  The lock is released while the Deliverer runs,
//   so Snapshot and DismissNotification answer immediately during delivery
//   and edits fail fast with ErrBusy.  A second Submit in that window gets
//   ErrInFlight and never reaches the Deliverer.
//
// Delivery ids
//   A valid draft gets one delivery id on its first Submit.  The id stays
//   across failed attempts and is passed to the Deliverer through the
//   context, so targets that already accepted the draft can recognise a
//   retry.  It is dropped when delivery succeeds or an edit changes the
//   draft.
//
//------------------------------------------------------------------------------

package submission

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/delivery"
	"github.com/yanizio/eventform/internal/event"
	"github.com/yanizio/eventform/internal/metrics"
)

// State is the controller's position in the submission lifecycle.
type State int

const (
	Editing State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome records how the last Submit ended.
type Outcome string

const (
	OutcomeNone             Outcome = ""
	OutcomeSucceeded        Outcome = "succeeded"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeDeliveryFailed   Outcome = "delivery_failed"
)

var (
	// ErrInFlight rejects Submit while another Submit is delivering.
	ErrInFlight = errors.New("submission already in flight")
	// ErrBusy rejects edits while a submission is delivering.
	ErrBusy = errors.New("form is busy submitting")
	// ErrUnknownField rejects edits to a field the form does not have.
	ErrUnknownField = errors.New("unknown form field")
)

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State        State             `json:"state"`
	Draft        event.RawDraft    `json:"draft"`
	Errors       event.FieldErrors `json:"errors,omitempty"`
	Notification Notification      `json:"notification"`
	Outcome      Outcome           `json:"lastOutcome,omitempty"`
}

// Controller is the submission state machine.  Create with New.
type Controller struct {
	deliverer    delivery.Deliverer
	dismissAfter time.Duration
	afterFunc    AfterFunc
	log          *zap.SugaredLogger

	mu        sync.Mutex
	state     State
	draft     event.RawDraft
	errs      event.FieldErrors
	note      Notification
	outcome   Outcome
	noteGen   uint64
	stopTimer func() bool

	deliveryID string
}

// Option customises a Controller.
type Option func(*Controller)

// WithDismissAfter sets the notification lifetime.  Non-positive values are
// ignored.
func WithDismissAfter(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.dismissAfter = d
		}
	}
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(af AfterFunc) Option {
	return func(c *Controller) { c.afterFunc = af }
}

// WithLogger sets the logger used for transition events.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) { c.log = log }
}

// New returns a Controller in the Editing state with an empty draft.
func New(d delivery.Deliverer, opts ...Option) *Controller {
	c := &Controller{
		deliverer:    d,
		dismissAfter: DefaultDismissAfter,
		afterFunc:    realAfterFunc,
		log:          zap.S(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UpdateField replaces one draft field.  It does not validate.  The edited
// field's displayed error is cleared; errors on other fields stay until the
// next submit.
func (c *Controller) UpdateField(f event.Field, value string) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Editing {
		return ErrBusy
	}
	if c.draft.Get(f) != value {
		c.deliveryID = ""
	}
	c.draft = c.draft.With(f, value)
	if c.errs != nil {
		delete(c.errs, f)
		if len(c.errs) == 0 {
			c.errs = nil
		}
	}
	return nil
}

// Submit validates the draft and, when valid, delivers it.
//
// It returns nil on success, *event.ValidationError when a field rule
// failed, *delivery.Error when the Deliverer failed, and ErrInFlight when
// another Submit is still delivering.  Every path leaves the controller in
// Editing.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return ErrInFlight
	}
	c.state = Submitting

	ev, ferrs := event.Validate(c.draft)
	if ferrs != nil {
		c.errs = ferrs
		c.finishLocked(Failed, OutcomeValidationFailed, KindError, TextFailure)
		c.mu.Unlock()

		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeValidation).Inc()
		c.log.Debugw("submission rejected by validation", "fields", ferrs.Fields())
		return &event.ValidationError{Fields: ferrs.Clone()}
	}
	c.errs = nil
	if c.deliveryID == "" {
		c.deliveryID = uuid.NewString()
	}
	id := c.deliveryID
	c.mu.Unlock()

	err := c.deliver(delivery.WithID(ctx, id), ev)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Draft and delivery id stay so the user can retry without retyping.
		c.finishLocked(Failed, OutcomeDeliveryFailed, KindError, TextFailure)
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeDeliveryError).Inc()
		c.log.Warnw("event delivery failed", "source_id", ev.SourceID, "delivery_id", id, "err", err)
		return delivery.AsError("deliverer", err)
	}

	c.draft = event.RawDraft{}
	c.deliveryID = ""
	c.finishLocked(Succeeded, OutcomeSucceeded, KindSuccess, TextSuccess)
	metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.log.Infow("event created", "source_id", ev.SourceID, "delivery_id", id)
	return nil
}

// deliver calls the Deliverer and turns a panic into a delivery error, so
// the controller always leaves Submitting.
func (c *Controller) deliver(ctx context.Context, ev event.DraftEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("deliverer panicked", "panic", r, "stack", string(debug.Stack()))
			err = &delivery.Error{Target: "deliverer", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return c.deliverer.Deliver(ctx, ev)
}

// finishLocked passes through the terminal state, raises the notification,
// and returns to Editing.
func (c *Controller) finishLocked(terminal State, out Outcome, kind Kind, text string) {
	c.state = terminal
	c.outcome = out
	c.raiseLocked(kind, text)
	c.state = Editing
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:        c.state,
		Draft:        c.draft,
		Errors:       c.errs.Clone(),
		Notification: c.note,
		Outcome:      c.outcome,
	}
}

// Close disarms the dismiss timer.  The session registry calls it on
// eviction.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarmLocked()
}
