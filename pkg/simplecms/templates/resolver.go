// Package templates provides the registry of page templates. Pages are
// validated against it at creation time: a template name must either be
// registered here or be the inheritance sentinel. Each registered
// template carries its parsed body and the placeholder slots it declares,
// which seed the placeholders of newly created pages.
package templates

import (
	"fmt"
	"html/template"
	"sync"
)

// Template describes a registered page template.
type Template struct {
	Name  string
	Slots []string

	tmpl *template.Template
}

// HTML returns the parsed template body.
func (t *Template) HTML() *template.Template {
	return t.tmpl
}

// Resolver holds the set of registered page templates. It is safe for
// concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	byName map[string]*Template
	order  []string
}

// NewResolver creates an empty template resolver.
func NewResolver() *Resolver {
	return &Resolver{
		byName: make(map[string]*Template),
	}
}

// Register parses body as an html/template and registers it under name
// with the given placeholder slots. Registering a name again replaces the
// previous entry.
func (r *Resolver) Register(name, body string, slots ...string) error {
	if name == "" {
		return fmt.Errorf("template name is required")
	}
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return fmt.Errorf("parse template %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = &Template{
		Name:  name,
		Slots: append([]string(nil), slots...),
		tmpl:  tmpl,
	}
	return nil
}

// MustRegister is Register that panics on failure, for init-time setup.
func (r *Resolver) MustRegister(name, body string, slots ...string) {
	if err := r.Register(name, body, slots...); err != nil {
		panic(err)
	}
}

// Resolve returns the template registered under name.
func (r *Resolver) Resolve(name string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered template names in registration order.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Default returns the name of the first registered template, or the empty
// string when nothing is registered.
func (r *Resolver) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}
