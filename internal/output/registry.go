package output

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/luoweipeter/coffea/internal/graph"
)

// Serializer renders a graph into the bytes of one interchange format.
type Serializer interface {
	// Serialize produces the complete serialized document for g.
	Serialize(g *graph.Graph) ([]byte, error)
}

// Registry maps format names to Serializers, enabling pluggable export
// formats.
type Registry struct {
	mu          sync.RWMutex
	serializers map[string]Serializer
}

// NewRegistry creates an empty serializer registry.
func NewRegistry() *Registry {
	return &Registry{
		serializers: make(map[string]Serializer),
	}
}

// Register adds a serializer under the given format name.
// Existing entries for the same name are overwritten.
func (r *Registry) Register(name string, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.serializers[name] = s
}

// Serializer returns the serializer for the given format, or an error if
// not found.
func (r *Registry) Serializer(name string) (Serializer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.serializers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.AvailableFormats())
	}

	return s, nil
}

// Formats returns the sorted list of registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.serializers))
	for name := range r.serializers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// AvailableFormats returns a comma-separated string of registered format names.
func (r *Registry) AvailableFormats() string {
	formats := r.Formats()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// DefaultRegistry returns a registry pre-populated with the built-in
// export formats: gml, graphml, dot, json.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("gml", &GMLSerializer{})
	r.Register("graphml", &GraphMLSerializer{})
	r.Register("dot", &DOTSerializer{})
	r.Register("json", &JSONSerializer{})

	return r
}
