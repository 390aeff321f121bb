package tools

import (
	"context"
	"fmt"
)

// Args is a decoded tool-call argument object.
type Args map[string]interface{}

// Handler executes a tool and returns a JSON-serialisable payload.
type Handler func(ctx context.Context, args Args) (interface{}, error)

type entry struct {
	def     Definition
	handler Handler
}

// Registry maps tool identifiers to definitions and handlers, keeping
// registration order for stable presentation to the backend.
type Registry struct {
	order   []string
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds or replaces a tool. Replacing keeps the original position.
func (r *Registry) Register(def Definition, h Handler) {
	if _, ok := r.entries[def.Name]; !ok {
		r.order = append(r.order, def.Name)
	}
	r.entries[def.Name] = entry{def: def, handler: h}
}

// Lookup returns the definition and handler for name.
func (r *Registry) Lookup(name string) (Definition, Handler, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Definition{}, nil, false
	}
	return e.def, e.handler, true
}

// Definitions returns the registered definitions in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].def)
	}
	return out
}

// Schema returns schema for a given tool name if present.
func (r *Registry) Schema(name string) (Schema, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Schema{}, false
	}
	return e.def.Parameters, true
}

// Listing is the list_directory payload.
type Listing struct {
	Entries []DirEntry `json:"entries"`
}

// SearchMatches is the search_text payload.
type SearchMatches struct {
	Matches []SearchResult `json:"matches"`
}

// NewWorkspaceRegistry registers the four filesystem tools of the catalog
// against fs. Delegation is registered by the agent, which owns the depth.
func NewWorkspaceRegistry(fs *Filesystem) *Registry {
	reg := NewRegistry()
	for _, def := range Catalog() {
		switch def.Name {
		case ToolListDirectory:
			reg.Register(def, func(_ context.Context, args Args) (interface{}, error) {
				path, _ := args.String("path")
				entries, err := fs.ListDir(path)
				if err != nil {
					return nil, fmt.Errorf("list_directory failed for %s: %w", displayPath(path), err)
				}
				return Listing{Entries: entries}, nil
			})
		case ToolReadFileFull:
			reg.Register(def, func(_ context.Context, args Args) (interface{}, error) {
				path, _ := args.String("path")
				content, err := fs.ReadFile(path)
				if err != nil {
					return nil, fmt.Errorf("read_file_full failed for %s: %w", path, err)
				}
				return content, nil
			})
		case ToolReadFileRange:
			reg.Register(def, func(_ context.Context, args Args) (interface{}, error) {
				path, _ := args.String("path")
				start, _ := args.Int("start_line")
				end, _ := args.Int("end_line")
				rng, err := fs.ReadRange(path, start, end)
				if err != nil {
					return nil, fmt.Errorf("read_file_range failed for %s (%d-%d): %w", path, start, end, err)
				}
				return rng, nil
			})
		case ToolSearchText:
			reg.Register(def, func(_ context.Context, args Args) (interface{}, error) {
				pattern, _ := args.String("pattern")
				path, _ := args.String("path")
				matches, err := fs.Search(path, pattern)
				if err != nil {
					return nil, fmt.Errorf("search_text failed for pattern `%s` in %s: %w", pattern, displayPath(path), err)
				}
				return SearchMatches{Matches: matches}, nil
			})
		}
	}
	return reg
}

// String returns the string value of key when present.
func (a Args) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// Int returns an integral JSON number as int.
func (a Args) Int(key string) (int, bool) {
	switch v := a[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func displayPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}
