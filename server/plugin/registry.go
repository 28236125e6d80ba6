/******************************************************************************
 *
 *  Description :
 *    Registry of feature modules keyed by plugin id. Populated once at
 *    process start, then read concurrently by the permission and address
 *    resolvers.
 *
 *****************************************************************************/
package plugin

import (
	"sync"

	"github.com/isomorphiccat/kemotown/server/logs"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// ValidationResult is the structured outcome of plugin data validation,
// shaped for direct use by form layers.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Registry holds registered plugins. Lookups are synchronous map reads.
type Registry struct {
	lock    sync.RWMutex
	plugins map[string]*Plugin
	// Registration order, for deterministic iteration.
	order []string
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]*Plugin)}
}

// Register adds a plugin. Registering the same id again replaces the
// previous entry with a warning.
func (r *Registry) Register(p *Plugin) {
	if p == nil || p.ID == "" {
		panic("plugin: registering an invalid plugin")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.plugins[p.ID]; found {
		logs.Warning.Println("plugin: overwriting registered plugin", p.ID)
	} else {
		r.order = append(r.order, p.ID)
	}
	r.plugins[p.ID] = p
}

// Unregister removes a plugin by id. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.plugins[id]; !found {
		return
	}
	delete(r.plugins, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the plugin with the given id, nil if not registered.
func (r *Registry) Get(id string) *Plugin {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.plugins[id]
}

// All returns every registered plugin in registration order.
func (r *Registry) All() []*Plugin {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]*Plugin, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.plugins[id])
	}
	return out
}

// ForContextKind returns plugins declaring compatibility with the kind.
func (r *Registry) ForContextKind(kind string) []*Plugin {
	var out []*Plugin
	for _, p := range r.All() {
		if p.AppliesTo(kind) {
			out = append(out, p)
		}
	}
	return out
}

// ForContext returns plugins which are both compatible with the context's
// kind and enabled as one of its features.
func (r *Registry) ForContext(ctx *t.Context) []*Plugin {
	var out []*Plugin
	for _, p := range r.All() {
		if p.AppliesTo(ctx.Kind) && ctx.HasFeature(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// AllActivityTypes returns the union of activity type labels contributed by
// registered plugins.
func (r *Registry) AllActivityTypes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range r.All() {
		for _, at := range p.ActivityTypes {
			if !seen[at] {
				seen[at] = true
				out = append(out, at)
			}
		}
	}
	return out
}

// RegisteredPattern is an address pattern together with its owning plugin id.
type RegisteredPattern struct {
	Plugin  string
	Pattern *AddressPattern
}

// AllAddressPatterns returns every address pattern contributed by registered
// plugins.
func (r *Registry) AllAddressPatterns() []RegisteredPattern {
	var out []RegisteredPattern
	for _, p := range r.All() {
		for i := range p.AddressPatterns {
			out = append(out, RegisteredPattern{Plugin: p.ID, Pattern: &p.AddressPatterns[i]})
		}
	}
	return out
}

// ValidateData schema-validates plugin data through the owning plugin's
// ValidateData hook. Unknown plugin ids produce a failed result, not an error.
func (r *Registry) ValidateData(pluginID string, ctx *t.Context, data t.KVMap) ValidationResult {
	p := r.Get(pluginID)
	if p == nil {
		return ValidationResult{Errors: []string{"unknown plugin: " + pluginID}}
	}
	if p.Hooks.ValidateData == nil {
		return ValidationResult{Valid: true}
	}
	if errs := p.Hooks.ValidateData(ctx, data); len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}
	return ValidationResult{Valid: true}
}

// Hook fan-out. Hooks are best-effort side effects: failures are logged and
// swallowed so they never abort the triggering operation.

func (r *Registry) OnContextCreate(ctx *t.Context) {
	for _, p := range r.ForContext(ctx) {
		if p.Hooks.OnContextCreate != nil {
			if err := p.Hooks.OnContextCreate(ctx); err != nil {
				logs.Warning.Println("plugin: onContextCreate failed", p.ID, err)
			}
		}
	}
}

func (r *Registry) OnContextUpdate(ctx *t.Context) {
	for _, p := range r.ForContext(ctx) {
		if p.Hooks.OnContextUpdate != nil {
			if err := p.Hooks.OnContextUpdate(ctx); err != nil {
				logs.Warning.Println("plugin: onContextUpdate failed", p.ID, err)
			}
		}
	}
}

func (r *Registry) OnContextDelete(ctx *t.Context) {
	for _, p := range r.ForContext(ctx) {
		if p.Hooks.OnContextDelete != nil {
			if err := p.Hooks.OnContextDelete(ctx); err != nil {
				logs.Warning.Println("plugin: onContextDelete failed", p.ID, err)
			}
		}
	}
}

func (r *Registry) OnMemberJoin(ctx *t.Context, sub *t.Membership) {
	for _, p := range r.ForContext(ctx) {
		if p.Hooks.OnMemberJoin != nil {
			if err := p.Hooks.OnMemberJoin(ctx, sub); err != nil {
				logs.Warning.Println("plugin: onMemberJoin failed", p.ID, err)
			}
		}
	}
}

func (r *Registry) OnMemberLeave(ctx *t.Context, sub *t.Membership) {
	for _, p := range r.ForContext(ctx) {
		if p.Hooks.OnMemberLeave != nil {
			if err := p.Hooks.OnMemberLeave(ctx, sub); err != nil {
				logs.Warning.Println("plugin: onMemberLeave failed", p.ID, err)
			}
		}
	}
}

func (r *Registry) OnActivityCreate(ctx *t.Context, act *t.Activity) {
	for _, p := range r.ForContext(ctx) {
		if p.Hooks.OnActivityCreate != nil {
			if err := p.Hooks.OnActivityCreate(ctx, act); err != nil {
				logs.Warning.Println("plugin: onActivityCreate failed", p.ID, err)
			}
		}
	}
}
