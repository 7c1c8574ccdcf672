package resolver

import (
	"fmt"

	"github.com/tsawler/vellum/core"
)

// ObjectReader is the object source a resolver works against.
type ObjectReader interface {
	GetObject(objNum int) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// ObjectResolver resolves indirect references, recursively when asked,
// with cycle detection and a recursion depth limit.
type ObjectResolver struct {
	reader       ObjectReader
	visited      map[core.IndirectRef]bool
	maxDepth     int
	currentDepth int
}

// Option configures a resolver.
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum recursion depth (default 100).
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

// NewResolver creates a resolver over the given object reader.
func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		reader:   reader,
		visited:  make(map[core.IndirectRef]bool),
		maxDepth: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve follows obj once if it is an indirect reference; nested
// references are left in place.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	return r.resolve(obj, false)
}

// ResolveDeep recursively resolves every indirect reference reachable from
// obj, fully expanding the object tree.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolve(obj, true)
}

func (r *ObjectResolver) resolve(obj core.Object, deep bool) (core.Object, error) {
	// A fresh top-level call starts with a clean visited set; cycles are
	// only an error within a single resolution tree.
	if r.currentDepth == 0 {
		r.visited = make(map[core.IndirectRef]bool)
	}

	if r.currentDepth >= r.maxDepth {
		return nil, fmt.Errorf("maximum resolution depth (%d) exceeded", r.maxDepth)
	}

	switch v := obj.(type) {
	case core.IndirectRef:
		if r.visited[v] {
			return nil, fmt.Errorf("circular reference detected for object %d %d R", v.Number, v.Generation)
		}
		r.visited[v] = true
		defer delete(r.visited, v)

		resolved, err := r.reader.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("resolve %d %d R: %w", v.Number, v.Generation, err)
		}

		if deep {
			r.currentDepth++
			resolved, err = r.resolve(resolved, deep)
			r.currentDepth--
			if err != nil {
				return nil, err
			}
		}
		return resolved, nil

	case core.Dict:
		if !deep {
			return v, nil
		}
		resolved := make(core.Dict, len(v))
		for key, value := range v {
			r.currentDepth++
			resolvedValue, err := r.resolve(value, deep)
			r.currentDepth--
			if err != nil {
				return nil, fmt.Errorf("resolve dict key %s: %w", key, err)
			}
			resolved[key] = resolvedValue
		}
		return resolved, nil

	case core.Array:
		if !deep {
			return v, nil
		}
		resolved := make(core.Array, len(v))
		for i, elem := range v {
			r.currentDepth++
			resolvedElem, err := r.resolve(elem, deep)
			r.currentDepth--
			if err != nil {
				return nil, fmt.Errorf("resolve array element %d: %w", i, err)
			}
			resolved[i] = resolvedElem
		}
		return resolved, nil

	case *core.Stream:
		if !deep {
			return v, nil
		}
		r.currentDepth++
		resolvedDict, err := r.resolve(v.Dict, deep)
		r.currentDepth--
		if err != nil {
			return nil, fmt.Errorf("resolve stream dict: %w", err)
		}
		return &core.Stream{
			Dict: resolvedDict.(core.Dict),
			Data: v.Data,
		}, nil

	default:
		return obj, nil
	}
}

// Reset clears cycle-tracking state between independent resolutions.
func (r *ObjectResolver) Reset() {
	r.visited = make(map[core.IndirectRef]bool)
	r.currentDepth = 0
}

// ResolveReference resolves a single reference shallowly.
func (r *ObjectResolver) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	defer r.Reset()
	return r.reader.ResolveReference(ref)
}

// GetObject loads an object by number.
func (r *ObjectResolver) GetObject(objNum int) (core.Object, error) {
	return r.reader.GetObject(objNum)
}
