package tools

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/cache"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
)

// cartCachePrefix covers every cached cart read; mutating tools wipe it
// before returning so a stale view_cart result can never follow a mutation.
const cartCachePrefix = "cart:"

// Dispatcher routes model-requested function calls to registered tools,
// applying memoization for read-only tools and cache invalidation for
// mutating ones. A tool failure never propagates as a crash; it becomes an
// error Result the model sees on its next turn.
type Dispatcher struct {
	registry *Registry
	cache    *cache.ToolCache
	logger   *logrus.Logger
}

func NewDispatcher(registry *Registry, toolCache *cache.ToolCache, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, cache: toolCache, logger: logger}
}

// Declarations exposes the registered tool schemas for payload building.
func (d *Dispatcher) Declarations() []gemini.Tool {
	return d.registry.Declarations()
}

// Dispatch executes one function call and always returns a structured result.
func (d *Dispatcher) Dispatch(rc models.RequestContext, name string, args gemini.Args) *Result {
	spec, ok := d.registry.Get(name)
	if !ok {
		err := &ExecutionError{Tool: name, Err: fmt.Errorf("unknown tool")}
		d.logger.WithField("tool", name).Warn("Unknown tool requested")
		return Errorf("%v", err)
	}

	cacheKey := ""
	if spec.CacheTTL > 0 {
		cacheKey = d.cacheKey(spec, rc, name, args)
		if cached, hit := d.cache.Get(cacheKey); hit {
			var result Result
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				d.logger.WithField("tool", name).Debug("Tool cache hit")
				return &result
			}
			d.cache.Delete(cacheKey)
		}
	}

	result := d.execute(spec, rc, name, args)

	// Invalidation happens synchronously, before the result is returned.
	if spec.Mutating {
		removed := d.cache.InvalidatePattern(cartCachePrefix)
		if removed > 0 {
			d.logger.WithFields(logrus.Fields{
				"tool":    name,
				"entries": removed,
			}).Debug("Invalidated cart cache")
		}
	}

	if cacheKey != "" && result.Status == StatusSuccess {
		if serialized, err := result.Serialize(); err == nil {
			d.cache.Set(cacheKey, serialized, spec.CacheTTL)
		}
	}

	return result
}

func (d *Dispatcher) cacheKey(spec *Spec, rc models.RequestContext, name string, args gemini.Args) string {
	key := spec.CachePrefix
	if spec.PerOwner {
		key += rc.Identifier() + ":"
	}
	return key + d.cache.Key(name, args)
}

// execute runs the handler behind a recover barrier so a panicking tool is
// contained at the dispatch site.
func (d *Dispatcher) execute(spec *Spec, rc models.RequestContext, name string, args gemini.Args) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			err := &ExecutionError{Tool: name, Err: fmt.Errorf("panic: %v", r)}
			d.logger.WithFields(logrus.Fields{
				"tool":  name,
				"panic": fmt.Sprintf("%v", r),
			}).Error("Tool execution panicked")
			result = Errorf("%v", err)
		}
	}()

	return spec.Handler(rc, args)
}
