// Package udf implements the user-defined-function registry that the match
// query engine and pipeline stages dispatch into: dynamically loaded Go
// plugins that inspect or mutate a video object.
package udf

import (
	"fmt"
	"plugin"
	"sync"
	"time"

	"github.com/insight-platform/go-savant-core/logger"
	"github.com/insight-platform/go-savant-core/metrics/prometheus"
	"github.com/insight-platform/go-savant-core/primitives"
)

var udfLog = logger.For("savant.udf")

// Kind identifies the call signature a registered function implements.
type Kind int

const (
	// ObjectPredicate functions test an object and return a boolean
	// verdict, used by query.UDFPredicate.
	ObjectPredicate Kind = iota
	// ObjectInplaceModifier functions mutate an object in place and
	// return an error on failure.
	ObjectInplaceModifier
	// ObjectMapModifier functions compute a result map from an object
	// without mutating it, used for derived-attribute UDFs.
	ObjectMapModifier
)

// String returns the kind's logging/metrics label.
func (k Kind) String() string {
	switch k {
	case ObjectPredicate:
		return "predicate"
	case ObjectInplaceModifier:
		return "modifier"
	case ObjectMapModifier:
		return "map"
	default:
		return "unknown"
	}
}

// PredicateFunc tests an object, e.g. for a custom filter predicate no
// built-in comparison expresses.
type PredicateFunc func(o *primitives.Object) (bool, error)

// ModifierFunc mutates an object in place.
type ModifierFunc func(o *primitives.Object) error

// MapFunc computes a derived result from an object without mutating it.
type MapFunc func(o *primitives.Object) (map[string]any, error)

type entry struct {
	kind      Kind
	predicate PredicateFunc
	modifier  ModifierFunc
	mapFn     MapFunc
}

// Registry is a concurrent-safe store of named UDFs, addressed either by a
// caller-chosen name (RegisterPredicate et al.) or by the canonical
// "plugin@symbol" name a .so file is loaded under (LoadPlugin).
type Registry struct {
	entries sync.Map // name (string) -> *entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// PluginFunctionName builds the canonical registry key a plugin's exported
// symbol is registered under.
func PluginFunctionName(pluginPath, symbol string) string {
	return fmt.Sprintf("%s@%s", pluginPath, symbol)
}

// RegisterPredicate binds name to an ObjectPredicate function.
func (r *Registry) RegisterPredicate(name string, fn PredicateFunc) {
	r.entries.Store(name, &entry{kind: ObjectPredicate, predicate: fn})
}

// RegisterModifier binds name to an ObjectInplaceModifier function.
func (r *Registry) RegisterModifier(name string, fn ModifierFunc) {
	r.entries.Store(name, &entry{kind: ObjectInplaceModifier, modifier: fn})
}

// RegisterMapFunc binds name to an ObjectMapModifier function.
func (r *Registry) RegisterMapFunc(name string, fn MapFunc) {
	r.entries.Store(name, &entry{kind: ObjectMapModifier, mapFn: fn})
}

// IsRegistered reports whether name is bound to any function.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.entries.Load(name)
	return ok
}

// Unregister removes a binding, a no-op if name was never registered.
func (r *Registry) Unregister(name string) {
	r.entries.Delete(name)
}

// CallPredicate invokes the ObjectPredicate registered under name.
func (r *Registry) CallPredicate(name string, o *primitives.Object) (bool, error) {
	start := time.Now()
	e, ok := r.lookup(name)
	if !ok {
		logger.UDFCall(udfLog, ObjectPredicate.String(), name, ErrFunctionNotFound)
		prometheus.RecordUDFCall(ObjectPredicate.String(), "not_found", time.Since(start).Seconds())
		return false, ErrFunctionNotFound
	}
	if e.kind != ObjectPredicate {
		logger.UDFCall(udfLog, ObjectPredicate.String(), name, ErrKindMismatch)
		prometheus.RecordUDFCall(ObjectPredicate.String(), "kind_mismatch", time.Since(start).Seconds())
		return false, ErrKindMismatch
	}
	result, err := e.predicate(o)
	logger.UDFCall(udfLog, ObjectPredicate.String(), name, err)
	status := "success"
	if err != nil {
		status = "error"
	}
	prometheus.RecordUDFCall(ObjectPredicate.String(), status, time.Since(start).Seconds())
	return result, err
}

// CallModifier invokes the ObjectInplaceModifier registered under name.
func (r *Registry) CallModifier(name string, o *primitives.Object) error {
	start := time.Now()
	e, ok := r.lookup(name)
	if !ok {
		logger.UDFCall(udfLog, ObjectInplaceModifier.String(), name, ErrFunctionNotFound)
		prometheus.RecordUDFCall(ObjectInplaceModifier.String(), "not_found", time.Since(start).Seconds())
		return ErrFunctionNotFound
	}
	if e.kind != ObjectInplaceModifier {
		logger.UDFCall(udfLog, ObjectInplaceModifier.String(), name, ErrKindMismatch)
		prometheus.RecordUDFCall(ObjectInplaceModifier.String(), "kind_mismatch", time.Since(start).Seconds())
		return ErrKindMismatch
	}
	err := e.modifier(o)
	logger.UDFCall(udfLog, ObjectInplaceModifier.String(), name, err)
	status := "success"
	if err != nil {
		status = "error"
	}
	prometheus.RecordUDFCall(ObjectInplaceModifier.String(), status, time.Since(start).Seconds())
	return err
}

// CallMapFunc invokes the ObjectMapModifier registered under name.
func (r *Registry) CallMapFunc(name string, o *primitives.Object) (map[string]any, error) {
	start := time.Now()
	e, ok := r.lookup(name)
	if !ok {
		logger.UDFCall(udfLog, ObjectMapModifier.String(), name, ErrFunctionNotFound)
		prometheus.RecordUDFCall(ObjectMapModifier.String(), "not_found", time.Since(start).Seconds())
		return nil, ErrFunctionNotFound
	}
	if e.kind != ObjectMapModifier {
		logger.UDFCall(udfLog, ObjectMapModifier.String(), name, ErrKindMismatch)
		prometheus.RecordUDFCall(ObjectMapModifier.String(), "kind_mismatch", time.Since(start).Seconds())
		return nil, ErrKindMismatch
	}
	result, err := e.mapFn(o)
	logger.UDFCall(udfLog, ObjectMapModifier.String(), name, err)
	status := "success"
	if err != nil {
		status = "error"
	}
	prometheus.RecordUDFCall(ObjectMapModifier.String(), status, time.Since(start).Seconds())
	return result, err
}

func (r *Registry) lookup(name string) (*entry, bool) {
	v, ok := r.entries.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// LoadPlugin opens the .so at pluginPath and registers its symbol under
// kind, keyed by PluginFunctionName(pluginPath, symbol). The symbol must be
// exported as a variable or function matching the signature Kind expects:
//
//	ObjectPredicate:        func(*primitives.Object) (bool, error)
//	ObjectInplaceModifier:  func(*primitives.Object) error
//	ObjectMapModifier:      func(*primitives.Object) (map[string]any, error)
func (r *Registry) LoadPlugin(pluginPath, symbol string, kind Kind) (string, error) {
	p, err := plugin.Open(pluginPath)
	if err != nil {
		err = fmt.Errorf("udf: opening plugin %s: %w", pluginPath, err)
		logger.UDFCall(udfLog, kind.String(), PluginFunctionName(pluginPath, symbol), err)
		return "", err
	}
	sym, err := p.Lookup(symbol)
	if err != nil {
		err = fmt.Errorf("udf: looking up symbol %s in %s: %w", symbol, pluginPath, err)
		logger.UDFCall(udfLog, kind.String(), PluginFunctionName(pluginPath, symbol), err)
		return "", err
	}

	name := PluginFunctionName(pluginPath, symbol)
	switch kind {
	case ObjectPredicate:
		fn, ok := sym.(func(*primitives.Object) (bool, error))
		if !ok {
			logger.UDFCall(udfLog, kind.String(), name, ErrSymbolNotFunc)
			return "", ErrSymbolNotFunc
		}
		r.RegisterPredicate(name, fn)
	case ObjectInplaceModifier:
		fn, ok := sym.(func(*primitives.Object) error)
		if !ok {
			logger.UDFCall(udfLog, kind.String(), name, ErrSymbolNotFunc)
			return "", ErrSymbolNotFunc
		}
		r.RegisterModifier(name, fn)
	case ObjectMapModifier:
		fn, ok := sym.(func(*primitives.Object) (map[string]any, error))
		if !ok {
			logger.UDFCall(udfLog, kind.String(), name, ErrSymbolNotFunc)
			return "", ErrSymbolNotFunc
		}
		r.RegisterMapFunc(name, fn)
	default:
		err := fmt.Errorf("udf: unknown kind %d", kind)
		logger.UDFCall(udfLog, kind.String(), name, err)
		return "", err
	}
	logger.UDFCall(udfLog, kind.String(), name, nil)
	return name, nil
}
