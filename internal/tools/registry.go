package tools

import (
	"time"

	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
)

// Handler executes one tool call. Handlers report failures through the
// Result status, never by panicking; the dispatcher adds a recover safety net
// on top.
type Handler func(rc models.RequestContext, args gemini.Args) *Result

// Spec is one registered tool: its schema as shown to the model plus the
// dispatch metadata (caching, invalidation) the dispatcher needs.
type Spec struct {
	Declaration gemini.FunctionDeclaration

	// CacheTTL enables result memoization when non-zero. Only read-only
	// tools may set it.
	CacheTTL    time.Duration
	CachePrefix string
	// PerOwner scopes the cache key to the caller so owner-specific reads
	// (the cart) never leak between users.
	PerOwner bool

	// Mutating tools invalidate every cached cart read before returning.
	Mutating bool

	Handler Handler
}

// Registry maps tool names to their specs, preserving registration order for
// the declarations sent to the model.
type Registry struct {
	specs map[string]*Spec
	order []string
}

func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

func (r *Registry) Register(spec *Spec) {
	name := spec.Declaration.Name
	if _, exists := r.specs[name]; !exists {
		r.order = append(r.order, name)
	}
	r.specs[name] = spec
}

func (r *Registry) Get(name string) (*Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Declarations returns the function declarations in registration order,
// wrapped as the single tool group the API expects.
func (r *Registry) Declarations() []gemini.Tool {
	decls := make([]gemini.FunctionDeclaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.specs[name].Declaration)
	}
	return []gemini.Tool{{FunctionDeclarations: decls}}
}
