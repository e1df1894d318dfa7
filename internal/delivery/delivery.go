// internal/delivery/delivery.go
//
// Event form: delivery contract.
//
// Context
//   The submission controller hands every validated event to a Deliverer.
//   Today the default target only logs; relay, Slack, and store targets can
//   be switched on from configuration without touching the controller.
//
//   Every Deliverer reports failure as *Error, so a transport problem can
//   never be mistaken for a validation problem further up.
//
//------------------------------------------------------------------------------

package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yanizio/eventform/internal/event"
	"github.com/yanizio/eventform/internal/metrics"
)

// Deliverer transmits a validated event to a remote consumer.
type Deliverer interface {
	Deliver(ctx context.Context, ev event.DraftEvent) error
}

// Func adapts a plain function to the Deliverer interface.
type Func func(ctx context.Context, ev event.DraftEvent) error

// Deliver implements Deliverer.
func (f Func) Deliver(ctx context.Context, ev event.DraftEvent) error { return f(ctx, ev) }

// Error is a transport or endpoint failure.
type Error struct {
	Target string // log, relay, slack, store, or fanout
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("deliver via %s: %v", e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError returns err as *Error, wrapping it under target when it is not one
// already.  A nil err stays nil.
func AsError(target string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Target: target, Err: err}
}

// instrumented records metrics around d and normalises its errors.
type instrumented struct {
	target string
	next   Deliverer
}

// Instrument wraps d so each call is counted and timed under target.
func Instrument(target string, d Deliverer) Deliverer {
	return &instrumented{target: target, next: d}
}

func (i *instrumented) Deliver(ctx context.Context, ev event.DraftEvent) error {
	start := time.Now()
	err := i.next.Deliver(ctx, ev)
	metrics.DeliveryDuration.WithLabelValues(i.target).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.DeliveriesTotal.WithLabelValues(i.target, result).Inc()
	return AsError(i.target, err)
}
