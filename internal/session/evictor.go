// evictor.go holds the eviction pass for Registry.  Each pass removes:
//
//   - sessions idle longer than idleTTL
//   - least-recently-used sessions while the map exceeds maxEntries
//
// Evictions are logged and counted in Prometheus.
package session

import (
	"sort"
	"time"

	"github.com/yanizio/eventform/internal/metrics"
)

// Evict runs one eviction pass as of now and returns how many sessions it
// removed.
func (r *Registry) Evict(now time.Time) int {
	var (
		evicted int
		live    []kv
	)

	// Idle pass.
	r.m.Range(func(key, value any) bool {
		at := value.(*entry).lastSeen.Load()
		idle := now.Sub(time.Unix(0, at))
		if r.idleTTL > 0 && idle > r.idleTTL {
			if r.drop(key) {
				evicted++
				metrics.SessionEvictTotal.Inc()
				r.log.Debugw("form session evicted", "session", key, "idle", idle.Truncate(time.Second))
			}
			return true
		}
		live = append(live, kv{key: key.(string), at: at})
		return true
	})

	// LRU pass.
	if r.maxEntries > 0 && len(live) > r.maxEntries {
		sort.Slice(live, func(i, j int) bool { return live[i].at < live[j].at })
		for _, e := range live[:len(live)-r.maxEntries] {
			if r.drop(e.key) {
				evicted++
				metrics.SessionEvictTotal.Inc()
				r.log.Debugw("form session evicted (LRU pressure)", "session", e.key)
			}
		}
	}

	if evicted > 0 {
		r.log.Infow("form sessions evicted", "count", evicted, "remaining", r.Len())
	}
	return evicted
}

type kv struct {
	key string
	at  int64
}
