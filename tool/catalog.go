package tool

import (
	"context"
	"fmt"
	"slices"
)

// Handler executes one backend operation with validated arguments.
// Backends report recoverable business-level failures inside the returned
// payload (an "error" key); a returned Go error is reserved for faults that
// escaped the backend's own reporting.
type Handler func(ctx context.Context, args Args) (map[string]any, error)

// Definition pairs a tool name with its schema, description, and handler.
// Coupling schema and handler in one record keeps the catalog and the
// dispatch table in lock-step: a name cannot appear in one without the other.
type Definition struct {
	Name        string
	Description string
	Schema      Schema
	Handler     Handler
}

// Catalog is the fixed, ordered tool catalog. Read-only after construction
// and safe for concurrent use without locking.
type Catalog struct {
	defs  map[string]Definition
	order []string
}

// NewCatalog assembles definition groups into a catalog, preserving
// insertion order. Duplicate names and definitions without a handler are
// configuration defects and fail construction.
func NewCatalog(groups ...[]Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition)}
	for _, group := range groups {
		for _, def := range group {
			if def.Name == "" {
				return nil, fmt.Errorf("tool: definition with empty name")
			}
			if def.Handler == nil {
				return nil, fmt.Errorf("tool: definition %q has no handler", def.Name)
			}
			if _, exists := c.defs[def.Name]; exists {
				return nil, fmt.Errorf("tool: duplicate definition %q", def.Name)
			}
			c.defs[def.Name] = def
			c.order = append(c.order, def.Name)
		}
	}
	return c, nil
}

// All returns every definition in insertion order. The sequence is identical
// across calls within a process lifetime, so callers may cache it.
func (c *Catalog) All() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.defs[name])
	}
	return out
}

// Get returns a definition by tool name.
func (c *Catalog) Get(name string) (Definition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Names returns all tool names in insertion order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.order)
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	return len(c.order)
}
