// internal/session/registry.go
//
// In-memory form sessions.
//
// Context
// -------
// Every browser gets its own submission controller, keyed by the id in the
// session cookie.  Controllers are created lazily on first request, stored
// in a sync.Map, and evicted when idle longer than IdleTTL or when the map
// grows past MaxEntries (least recently used first).
//
// A client presenting a well-formed id the registry no longer knows, for
// example after a restart, keeps that id and gets a fresh controller.
// Concurrent first requests for one id share a singleflight barrier, so
// only one controller is ever created per id.
//
// Notes
// -----
//   - Sessions hold drafts only; nothing here is persisted.
//   - Oxford commas, two spaces after periods.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/eventform/internal/config"
	"github.com/yanizio/eventform/internal/metrics"
	"github.com/yanizio/eventform/internal/submission"
)

// Factory builds the controller for a new session.
type Factory func() *submission.Controller

type entry struct {
	ctl      *submission.Controller
	lastSeen atomic.Int64 // UnixNano
}

func (e *entry) touch(now time.Time) { e.lastSeen.Store(now.UnixNano()) }

// Registry maps session ids to controllers.
type Registry struct {
	factory    Factory
	sfg        singleflight.Group
	m          sync.Map // id → *entry
	idleTTL    time.Duration
	maxEntries int
	interval   time.Duration
	log        *zap.SugaredLogger
	now        func() time.Time
}

// NewRegistry returns an empty Registry.  Call Run to start eviction.
func NewRegistry(cfg config.Session, factory Factory, log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.S()
	}
	return &Registry{
		factory:    factory,
		idleTTL:    cfg.IdleTTL,
		maxEntries: cfg.MaxEntries,
		interval:   cfg.EvictInterval,
		log:        log,
		now:        time.Now,
	}
}

// Acquire returns the controller for id, creating it when absent.  A
// malformed or empty id is replaced by a new random one; the id actually
// used is returned so the caller can (re)issue the cookie.
func (r *Registry) Acquire(id string) (string, *submission.Controller) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	if ctl, ok := r.lookup(id); ok {
		return id, ctl
	}

	v, _, _ := r.sfg.Do(id, func() (any, error) {
		// Double-check after the singleflight barrier.
		if ctl, ok := r.lookup(id); ok {
			return ctl, nil
		}
		ent := &entry{ctl: r.factory()}
		ent.touch(r.now())
		r.m.Store(id, ent)
		metrics.ActiveSessions.Inc()
		r.log.Debugw("form session created", "session", id)
		return ent.ctl, nil
	})
	return id, v.(*submission.Controller)
}

func (r *Registry) lookup(id string) (*submission.Controller, bool) {
	v, ok := r.m.Load(id)
	if !ok {
		return nil, false
	}
	ent := v.(*entry)
	ent.touch(r.now())
	return ent.ctl, true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	n := 0
	r.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Run evicts on every EvictInterval tick until ctx is cancelled, then
// closes every remaining controller.
func (r *Registry) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-t.C:
			r.Evict(r.now())
		}
	}
}

// Close drops every session and disarms its controller.
func (r *Registry) Close() {
	r.m.Range(func(key, _ any) bool {
		r.drop(key)
		return true
	})
}

// drop removes key and reports whether this call removed it.
func (r *Registry) drop(key any) bool {
	v, ok := r.m.LoadAndDelete(key)
	if !ok {
		return false
	}
	v.(*entry).ctl.Close()
	metrics.ActiveSessions.Dec()
	return true
}
