// Package apphooks provides the registry of applications that can be
// bound to a page. Binding resolves a registered name to its canonical
// form; an apphook that declares an application name requires callers to
// supply an instance namespace.
package apphooks

import (
	"fmt"
	"sync"
)

// Apphook describes an application available for page binding.
type Apphook struct {
	// Name is the registered identifier pages store as their binding.
	Name string

	// AppName, when set, marks the apphook as namespaced: every page
	// binding must carry an instance namespace.
	AppName string
}

// RequiresNamespace reports whether page bindings must supply a namespace.
func (a Apphook) RequiresNamespace() bool {
	return a.AppName != ""
}

// Pool is the registry of apphooks. It is safe for concurrent use.
type Pool struct {
	mu    sync.RWMutex
	apps  map[string]Apphook
	order []string
}

// NewPool creates an empty apphook pool.
func NewPool() *Pool {
	return &Pool{
		apps: make(map[string]Apphook),
	}
}

// Register adds an apphook to the pool. Registering a name again replaces
// the previous entry.
func (p *Pool) Register(app Apphook) error {
	if app.Name == "" {
		return fmt.Errorf("apphook name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.apps[app.Name]; !exists {
		p.order = append(p.order, app.Name)
	}
	p.apps[app.Name] = app
	return nil
}

// Get returns the apphook registered under name.
func (p *Pool) Get(name string) (Apphook, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	app, ok := p.apps[name]
	return app, ok
}

// Names returns the registered apphook names in registration order.
func (p *Pool) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}
