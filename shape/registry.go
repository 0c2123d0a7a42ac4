package shape

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry resolves type names to shapes. Every registry starts with
// the primitive types pre-registered under their prim names. Full
// names always win; a short name (the segment after the last '.')
// resolves only while it is unambiguous.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Shape
	short  map[string][]string
}

// NewRegistry returns a registry seeded with the primitive shapes.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Shape),
		short:  make(map[string][]string),
	}
	for p := I8; p <= String; p++ {
		r.byName[p.String()] = &Primitive{Prim: p}
	}
	return r
}

// Add registers sh under its type name. Registering a name twice is
// an error; the primitive names are reserved.
func (r *Registry) Add(sh Shape) error {
	name := sh.TypeName()
	if name == "" {
		return fmt.Errorf("shape: cannot register a shape without a type name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("shape: type %q already registered", name)
	}
	r.byName[name] = sh
	if s := shortName(name); s != name {
		r.short[s] = append(r.short[s], name)
	}
	return nil
}

// MustAdd is Add that panics on error, for static registrations.
func (r *Registry) MustAdd(sh Shape) {
	if err := r.Add(sh); err != nil {
		panic(err)
	}
}

// Lookup resolves name to a shape. The full name is tried first, then
// the short-name table when exactly one registered type matches.
func (r *Registry) Lookup(name string) (Shape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sh, ok := r.byName[name]; ok {
		return sh, true
	}
	if full := r.short[name]; len(full) == 1 {
		return r.byName[full[0]], true
	}
	return nil, false
}

// Names returns every registered type name, sorted. Primitive names
// are included.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func shortName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
