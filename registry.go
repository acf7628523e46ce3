package sift

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sift-go/sift/schema"
)

// SchemaFactory builds a schema lazily on first registration.
type SchemaFactory func() *schema.Node

// Registry owns the mapping from schema identifier to compiled schema.
// Entries are created lazily on first use, live for the lifetime of the
// process, and are never evicted. Registration is insert-if-absent: the
// first write for an identifier wins and the factory is invoked at most
// once, even under concurrent access.
type Registry struct {
	entries sync.Map // string -> *registryEntry
}

// registryEntry single-flights schema construction per identifier.
type registryEntry struct {
	once sync.Once
	node *schema.Node
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register resolves def to a schema and caches it under id. When id is
// omitted, a stable identifier is derived from the caller's source location
// (file:line), so repeated calls from the same call site reuse the same
// compiled schema.
//
// def may be a *schema.Node, a SchemaFactory, or a plain func() *schema.Node.
// If an entry already exists for the identifier it is returned unchanged and
// the factory is not invoked. A def that yields no schema returns nil and
// leaves the identifier unregistered, so a later valid definition under the
// same identifier is compiled as if the failed attempt never happened.
//
// On first registration the schema's array-typed field paths are computed
// and attached as metadata for the coercion step; the empty path denotes
// the root itself.
func (r *Registry) Register(def any, id ...string) *schema.Node {
	key := ""
	if len(id) > 0 {
		key = id[0]
	}
	if key == "" {
		key = callSiteID()
	}

	entry := r.entry(key)
	entry.once.Do(func() {
		node := buildSchema(def)
		if node == nil {
			return
		}
		attachArrayPaths(node)
		entry.node = node
	})
	if entry.node == nil {
		// The build yielded nothing and the entry's once is spent; drop it
		// so the identifier stays registrable. CompareAndDelete leaves any
		// fresh entry a concurrent retry already stored.
		r.entries.CompareAndDelete(key, entry)
		return nil
	}
	return entry.node
}

// Lookup returns the schema registered under id.
func (r *Registry) Lookup(id string) (*schema.Node, bool) {
	v, ok := r.entries.Load(id)
	if !ok {
		return nil, false
	}
	entry := v.(*registryEntry)
	if entry.node == nil {
		return nil, false
	}
	return entry.node, true
}

func (r *Registry) entry(key string) *registryEntry {
	if v, ok := r.entries.Load(key); ok {
		return v.(*registryEntry)
	}
	actual, _ := r.entries.LoadOrStore(key, &registryEntry{})
	return actual.(*registryEntry)
}

func buildSchema(def any) *schema.Node {
	switch d := def.(type) {
	case *schema.Node:
		return d
	case SchemaFactory:
		return d()
	case func() *schema.Node:
		return d()
	default:
		return nil
	}
}

// attachArrayPaths computes and caches the schema's array-typed positions.
// Computed at most once per schema; a schema registered under several
// identifiers keeps the metadata from its first registration.
func attachArrayPaths(node *schema.Node) {
	if _, ok := node.Meta(metaArrayPaths); ok {
		return
	}
	if paths := arrayPaths(node); len(paths) > 0 {
		node.SetMeta(metaArrayPaths, paths)
	}
}

// arrayPaths walks the schema tree: array-typed nodes record their dotted
// path (root is ""), object-typed nodes are recursed into per named child.
func arrayPaths(node *schema.Node) []string {
	var paths []string
	var walk func(n *schema.Node, path string)
	walk = func(n *schema.Node, path string) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case schema.KindArray:
			paths = append(paths, path)
		case schema.KindObject:
			for _, name := range n.Keys() {
				child, _ := n.Key(name)
				childPath := name
				if path != "" {
					childPath = path + "." + name
				}
				walk(child, childPath)
			}
		}
	}
	walk(node, "")
	return paths
}

///////////////////////////////////////////////////////////////////////////////
// Call-site identifiers
///////////////////////////////////////////////////////////////////////////////

// packageDir locates this package's source directory so call-site
// resolution can skip its own frames.
var packageDir = func() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}()

// callSiteID derives a registration identifier from the nearest caller
// frame outside this package. Test files in this directory count as
// callers, so the package's own tests exercise distinct sites.
func callSiteID() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		internal := filepath.Dir(frame.File) == packageDir &&
			!strings.HasSuffix(frame.File, "_test.go")
		if !internal {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
	}
}
