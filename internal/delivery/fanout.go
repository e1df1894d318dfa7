package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanizio/eventform/internal/event"
)

// pendingTTL bounds how long partial progress is remembered for a delivery
// id that is never retried.
const pendingTTL = time.Hour

// pending records which targets already accepted one delivery id.
type pending struct {
	done []bool
	seen time.Time
}

// Fanout delivers one event to every target concurrently.  All targets run
// to completion; the event counts as delivered only when every target
// succeeded.
//
// When the context carries a delivery id (WithID), targets that succeeded
// are remembered under it, and a retry of the same id only runs the targets
// that failed.  Without an id every call runs every target.
type Fanout struct {
	targets []Deliverer
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*pending
}

// NewFanout returns a Fanout over targets.
func NewFanout(targets ...Deliverer) *Fanout {
	return &Fanout{
		targets: targets,
		now:     time.Now,
		pending: make(map[string]*pending),
	}
}

// Len returns the number of targets.
func (f *Fanout) Len() int { return len(f.targets) }

// Deliver implements Deliverer.
func (f *Fanout) Deliver(ctx context.Context, ev event.DraftEvent) error {
	id := IDFromContext(ctx)
	done := f.progress(id)

	errs := make([]error, len(f.targets))
	var g errgroup.Group
	for i, d := range f.targets {
		if done[i] {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			errs[i] = d.Deliver(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			done[i] = true
		}
	}
	f.record(id, done)

	if err := errors.Join(errs...); err != nil {
		return &Error{Target: "fanout", Err: err}
	}
	return nil
}

// progress returns a copy of the success flags for id and prunes entries
// that outlived pendingTTL.
func (f *Fanout) progress(id string) []bool {
	done := make([]bool, len(f.targets))
	if id == "" {
		return done
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	for k, p := range f.pending {
		if now.Sub(p.seen) > pendingTTL {
			delete(f.pending, k)
		}
	}
	if p, ok := f.pending[id]; ok {
		copy(done, p.done)
	}
	return done
}

// record stores partial progress for id, or forgets id once every target
// succeeded.
func (f *Fanout) record(id string, done []bool) {
	if id == "" {
		return
	}
	all := true
	for _, ok := range done {
		all = all && ok
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if all {
		delete(f.pending, id)
		return
	}
	f.pending[id] = &pending{done: done, seen: f.now()}
}
