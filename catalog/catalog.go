// Package catalog holds the components a bot graph can be built from.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/meikuraledutech/botdag"
)

// ActionsAI is the section of user-defined AI actions.
const ActionsAI = "ai_actions"

// Catalog maps a component type to its components keyed by id.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]map[string]botdag.Component
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{types: map[string]map[string]botdag.Component{}}
}

// Load reads a catalog file shaped as {"<type>": {"<id>": component}}.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var types map[string]map[string]botdag.Component
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	c := New()
	for typ, comps := range types {
		for id, comp := range comps {
			if comp.ID == "" {
				comp.ID = id
			}
			if comp.Type == "" {
				comp.Type = typ
			}
			c.Add(comp)
		}
	}
	return c, nil
}

// Add registers comp under its type, replacing any component with the same id.
func (c *Catalog) Add(comp botdag.Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.types[comp.Type] == nil {
		c.types[comp.Type] = map[string]botdag.Component{}
	}
	c.types[comp.Type][comp.ID] = comp
}

// Types returns the sorted component types.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.types))
	for t := range c.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// List returns the components of one type; ok is false for an unknown type.
func (c *Catalog) List(typ string) (map[string]botdag.Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comps, ok := c.types[typ]
	if !ok {
		return nil, false
	}
	out := make(map[string]botdag.Component, len(comps))
	for id, comp := range comps {
		out[id] = comp
	}
	return out, true
}

// Get returns one component.
func (c *Catalog) Get(typ, id string) (botdag.Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.types[typ][id]
	return comp, ok
}
