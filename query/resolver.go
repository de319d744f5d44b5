// Package query implements the match query engine: predicates over
// objects and frames, an embedded Lua expression evaluator, variable
// resolution, and the batch-parallel collection operators built on top.
package query

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/insight-platform/go-savant-core/config"
	"github.com/insight-platform/go-savant-core/paramstore"
)

// Resolver supplies named string bindings to expression evaluation —
// utility functions, remote parameters, static config, or environment
// variables. EvalExpr queries a ResolverChain for every free variable an
// expression references before handing it to the Lua evaluator.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context) (map[string]string, error)
}

// ResolverChain composes multiple resolvers into one. Resolvers are
// queried in order, with later resolvers overriding earlier ones when
// keys conflict — utility bindings lose to remote parameters, which lose
// to explicit per-query overrides, matching the precedence a config
// layer with defaults-then-overrides would use.
type ResolverChain struct {
	resolvers []Resolver
}

// NewResolverChain creates a ResolverChain from the given resolvers,
// queried in the order given.
func NewResolverChain(resolvers ...Resolver) *ResolverChain {
	return &ResolverChain{resolvers: resolvers}
}

// Name returns the chain's own identifier.
func (c *ResolverChain) Name() string {
	return "chain"
}

// Resolve queries every resolver in the chain and merges their bindings,
// later resolvers winning on key conflicts. It stops and returns an error
// as soon as any resolver fails.
func (c *ResolverChain) Resolve(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)
	for _, r := range c.resolvers {
		bindings, err := r.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolver %s failed: %w", r.Name(), err)
		}
		for k, v := range bindings {
			result[k] = v
		}
	}
	return result, nil
}

// Add appends a resolver to the chain and returns the chain for chaining.
func (c *ResolverChain) Add(r Resolver) *ResolverChain {
	c.resolvers = append(c.resolvers, r)
	return c
}

// Resolvers returns the chain's resolvers in query order.
func (c *ResolverChain) Resolvers() []Resolver {
	return c.resolvers
}

// StaticResolver resolves a fixed set of bindings, used for config-sourced
// and test-injected variables.
type StaticResolver struct {
	name     string
	bindings map[string]string
}

// NewStaticResolver returns a Resolver that always supplies bindings.
func NewStaticResolver(name string, bindings map[string]string) *StaticResolver {
	return &StaticResolver{name: name, bindings: bindings}
}

func (s *StaticResolver) Name() string {
	return s.name
}

func (s *StaticResolver) Resolve(ctx context.Context) (map[string]string, error) {
	return s.bindings, nil
}

// UtilityResolver supplies built-in values with no external source, such as
// the current time. It is the first resolver in the fixed chain order so
// every other resolver can override its bindings.
type UtilityResolver struct{}

// NewUtilityResolver returns a Resolver supplying builtin bindings.
func NewUtilityResolver() *UtilityResolver { return &UtilityResolver{} }

func (u *UtilityResolver) Name() string { return "utility" }

// Resolve binds "now" to the current Unix timestamp. Other builtins
// (string/table helpers such as len) are exposed as Lua globals directly by
// bindLuaGlobals rather than as resolver bindings, since they take
// arguments and a Resolver only supplies nullary string values.
func (u *UtilityResolver) Resolve(ctx context.Context) (map[string]string, error) {
	return map[string]string{
		"now": strconv.FormatInt(time.Now().Unix(), 10),
	}, nil
}

// ParamStoreResolver resolves free variables against a paramstore.Store's
// in-process mirror. Keys lists the parameter names this resolver exposes;
// EvalExpr's free variables are fixed per query, so the resolver is
// constructed with the exact set of keys its expressions reference.
type ParamStoreResolver struct {
	store *paramstore.Store
	keys  []string
}

// NewParamStoreResolver returns a Resolver backed by store, exposing keys.
func NewParamStoreResolver(store *paramstore.Store, keys ...string) *ParamStoreResolver {
	return &ParamStoreResolver{store: store, keys: keys}
}

func (p *ParamStoreResolver) Name() string { return "remote-parameter" }

// Resolve reads each configured key from the store's mirror via GetData.
// Keys absent from the mirror are simply omitted, not an error.
func (p *ParamStoreResolver) Resolve(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(p.keys))
	for _, k := range p.keys {
		if data, _, ok := p.store.GetData(k); ok {
			out[k] = string(data)
		}
	}
	return out, nil
}

// ConfigResolver exposes selected fields of a config.Config as resolver
// bindings, dot-prefixed with "config." to avoid colliding with parameter
// store or environment variable names.
type ConfigResolver struct {
	cfg *config.Config
}

// NewConfigResolver returns a Resolver backed by cfg.
func NewConfigResolver(cfg *config.Config) *ConfigResolver {
	return &ConfigResolver{cfg: cfg}
}

func (c *ConfigResolver) Name() string { return "config" }

func (c *ConfigResolver) Resolve(ctx context.Context) (map[string]string, error) {
	if c.cfg == nil {
		return map[string]string{}, nil
	}
	return map[string]string{
		"config.pipeline.max_concurrent_batch_workers": strconv.Itoa(c.cfg.Pipeline.MaxConcurrentBatchWorkers),
		"config.parameter_store.dial_timeout":          c.cfg.ParameterStore.DialTimeout.String(),
		"config.parameter_store.lease_ttl":             c.cfg.ParameterStore.LeaseTTL.String(),
		"config.fifo.max_elements":                     strconv.FormatUint(c.cfg.FIFO.MaxElements, 10),
	}, nil
}

// EnvironmentResolver wraps process environment variables. Every currently
// set variable is resolved through os.LookupEnv so a variable unset between
// enumeration and lookup is simply omitted rather than surfacing a stale
// value.
type EnvironmentResolver struct{}

// NewEnvironmentResolver returns a Resolver backed by os.LookupEnv.
func NewEnvironmentResolver() *EnvironmentResolver { return &EnvironmentResolver{} }

func (e *EnvironmentResolver) Name() string { return "environment" }

func (e *EnvironmentResolver) Resolve(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		key := strings.SplitN(kv, "=", 2)[0]
		if v, ok := os.LookupEnv(key); ok {
			out[key] = v
		}
	}
	return out, nil
}

// NewDefaultResolverChain returns the fixed, ordered resolver chain EvalExpr
// nodes bind free variables against: utility, remote-parameter, config,
// environment, each overriding the bindings of the resolver before it.
// store or cfg may be nil if their resolver should contribute no bindings.
func NewDefaultResolverChain(store *paramstore.Store, paramKeys []string, cfg *config.Config) *ResolverChain {
	return NewResolverChain(
		NewUtilityResolver(),
		NewParamStoreResolver(store, paramKeys...),
		NewConfigResolver(cfg),
		NewEnvironmentResolver(),
	)
}
