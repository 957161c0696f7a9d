// Package plugins provides the registry of plugin types. A plugin type
// names the shape of the data record behind a placed content block; the
// placement operation resolves type names against this pool and validates
// supplied field values against the declared fields.
package plugins

import (
	"fmt"
	"sync"
)

// Field describes one data field a plugin type declares.
type Field struct {
	Name     string
	Required bool
}

// Descriptor describes a registered plugin type. A descriptor without
// declared fields accepts arbitrary data.
type Descriptor struct {
	Name   string
	Fields []Field
}

// ValidateData checks the supplied field values against the declared
// fields: every required field must be present, and no undeclared field
// is accepted. Descriptors without fields skip both checks.
func (d Descriptor) ValidateData(data map[string]interface{}) error {
	if len(d.Fields) == 0 {
		return nil
	}

	declared := make(map[string]Field, len(d.Fields))
	for _, f := range d.Fields {
		declared[f.Name] = f
	}

	for name := range data {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("plugin type %q has no field %q", d.Name, name)
		}
	}
	for _, f := range d.Fields {
		if !f.Required {
			continue
		}
		if _, ok := data[f.Name]; !ok {
			return fmt.Errorf("plugin type %q requires field %q", d.Name, f.Name)
		}
	}
	return nil
}

// Pool is the registry of plugin types. It is safe for concurrent use.
type Pool struct {
	mu    sync.RWMutex
	types map[string]Descriptor
	order []string
}

// NewPool creates an empty plugin-type pool.
func NewPool() *Pool {
	return &Pool{
		types: make(map[string]Descriptor),
	}
}

// Register adds a plugin type to the pool. Registering a name again
// replaces the previous entry.
func (p *Pool) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("plugin type name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.types[d.Name]; !exists {
		p.order = append(p.order, d.Name)
	}
	p.types[d.Name] = d
	return nil
}

// Get returns the descriptor registered under name.
func (p *Pool) Get(name string) (Descriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.types[name]
	return d, ok
}

// Names returns the registered type names in registration order.
func (p *Pool) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}
