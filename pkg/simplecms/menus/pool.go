// Package menus provides the registry of navigation extenders: named menu
// extensions a page can attach to grow the navigation tree below it. Page
// creation validates extender names against the enabled entries.
package menus

import (
	"fmt"
	"sync"
)

// Extender describes a registered navigation extender.
type Extender struct {
	Name    string
	Enabled bool
}

// Pool is the registry of navigation extenders. It is safe for concurrent
// use.
type Pool struct {
	mu        sync.RWMutex
	extenders map[string]Extender
	order     []string
}

// NewPool creates an empty menu pool.
func NewPool() *Pool {
	return &Pool{
		extenders: make(map[string]Extender),
	}
}

// Register adds an extender to the pool. Registering a name again
// replaces the previous entry.
func (p *Pool) Register(e Extender) error {
	if e.Name == "" {
		return fmt.Errorf("extender name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.extenders[e.Name]; !exists {
		p.order = append(p.order, e.Name)
	}
	p.extenders[e.Name] = e
	return nil
}

// Get returns the extender registered under name.
func (p *Pool) Get(name string) (Extender, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.extenders[name]
	return e, ok
}

// EnabledNames returns the names of enabled extenders in registration
// order.
func (p *Pool) EnabledNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.order))
	for _, name := range p.order {
		if p.extenders[name].Enabled {
			names = append(names, name)
		}
	}
	return names
}
