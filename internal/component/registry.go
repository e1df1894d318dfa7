// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web calls Mount once the
// shared services exist; Mount runs Init(env) on every component and lets
// each one add its page and API routes to a shared router group.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Routes() should add BOTH page and API endpoints to r, e.g:
//
//	r.Get("/", c.getPage)
//	r.Route("/api", func(api chi.Router) { ... })
//
// Routes() is only called after a successful Init.
type Component interface {
	Name() string
	Init(Env) error
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  Registering the
// same name twice replaces the earlier component.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every registered component with env and mounts its
// routes on r inside one group, so components share r's middleware stack.
// Per-route middleware such as sessions stays with the component.
func Mount(r chi.Router, env Env) error {
	comps := All()
	for _, c := range comps {
		if err := c.Init(env); err != nil {
			return fmt.Errorf("init component %s: %w", c.Name(), err)
		}
	}
	r.Group(func(g chi.Router) {
		for _, c := range comps {
			c.Routes(g)
		}
	})
	return nil
}
