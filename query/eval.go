package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/insight-platform/go-savant-core/bbox"
	"github.com/insight-platform/go-savant-core/config"
	"github.com/insight-platform/go-savant-core/logger"
	"github.com/insight-platform/go-savant-core/metrics/prometheus"
	"github.com/insight-platform/go-savant-core/primitives"
	"github.com/insight-platform/go-savant-core/udf"
)

var evalLog = logger.For("savant.query")

// defaultMaxConcurrentBatchWorkers bounds BatchFilter/BatchPartition
// fan-out for engines built via NewEngine, which has no config.Config to
// read from. NewEngineWithConfig takes the bound from
// config.PipelineConfig.MaxConcurrentBatchWorkers instead.
const defaultMaxConcurrentBatchWorkers = 8

// Engine evaluates Query trees against objects. It owns the UDF registry,
// the resolver chain EvalExpr nodes bind free variables against, and the
// per-source-string cache of compiled Lua chunks EvalExpr reuses across
// calls.
type Engine struct {
	UDF       *udf.Registry
	Resolvers *ResolverChain

	// MaxConcurrentBatchWorkers bounds how many goroutines BatchFilter and
	// BatchPartition spawn per call, via a semaphore-gated errgroup. A
	// value <= 0 falls back to defaultMaxConcurrentBatchWorkers.
	MaxConcurrentBatchWorkers int

	luaCache sync.Map // string -> *luaChunk
}

// NewEngine returns an Engine backed by udfRegistry and resolvers. Either
// may be nil if the caller's query set never uses UDF or EvalExpr nodes.
// Batch fan-out is bounded by defaultMaxConcurrentBatchWorkers; use
// NewEngineWithConfig to size it from config.PipelineConfig instead.
func NewEngine(udfRegistry *udf.Registry, resolvers *ResolverChain) *Engine {
	return &Engine{UDF: udfRegistry, Resolvers: resolvers, MaxConcurrentBatchWorkers: defaultMaxConcurrentBatchWorkers}
}

// NewEngineWithConfig returns an Engine whose BatchFilter/BatchPartition
// fan-out is bounded by cfg.MaxConcurrentBatchWorkers (falling back to
// defaultMaxConcurrentBatchWorkers if unset).
func NewEngineWithConfig(udfRegistry *udf.Registry, resolvers *ResolverChain, cfg config.PipelineConfig) *Engine {
	n := cfg.MaxConcurrentBatchWorkers
	if n <= 0 {
		n = defaultMaxConcurrentBatchWorkers
	}
	return &Engine{UDF: udfRegistry, Resolvers: resolvers, MaxConcurrentBatchWorkers: n}
}

func (e *Engine) maxConcurrentBatchWorkers() int64 {
	if e.MaxConcurrentBatchWorkers <= 0 {
		return defaultMaxConcurrentBatchWorkers
	}
	return int64(e.MaxConcurrentBatchWorkers)
}

// Eval evaluates q against o, which must belong to frame (frame supplies
// parent lookups and the WithChildren child set).
func (e *Engine) Eval(ctx context.Context, q Query, o *primitives.Object, frame *primitives.Frame) (bool, error) {
	start := time.Now()
	matched, err := e.evalNode(ctx, q, o, frame)

	result := "unmatched"
	switch {
	case err != nil:
		result = "error"
	case matched:
		result = "matched"
	}
	prometheus.RecordQueryEval(q.Kind.String(), result, time.Since(start).Seconds())
	logger.QueryEval(evalLog, q.Kind.String(), matched, err)

	return matched, err
}

// evalNode dispatches a single Query node against o.
func (e *Engine) evalNode(ctx context.Context, q Query, o *primitives.Object, frame *primitives.Frame) (bool, error) {
	switch q.Kind {
	case KindPass:
		return true, nil

	case KindObjectID:
		return q.Int.Eval(o.ID), nil

	case KindNamespace:
		return q.Str.Eval(o.Namespace), nil

	case KindLabel:
		return q.Str.Eval(o.Label), nil

	case KindConfidenceDefined:
		return o.ConfidenceDefined(), nil

	case KindConfidence:
		if o.Confidence == nil {
			return false, nil
		}
		return q.Float.Eval(*o.Confidence), nil

	case KindTrackDefined:
		return o.TrackDefined(), nil

	case KindTrackID:
		if o.TrackID == nil {
			return false, nil
		}
		return q.Int.Eval(*o.TrackID), nil

	case KindBoxField:
		box := o.Detection
		if q.Track {
			if o.Track == nil {
				return false, nil
			}
			box = *o.Track
		}
		return evalBoxField(q, box), nil

	case KindBoxMetric:
		box := o.Detection
		if q.Track {
			if o.Track == nil {
				return false, nil
			}
			box = *o.Track
		}
		m := bbox.Metric(box, q.Other, q.MetricKind)
		return q.Threshold.Eval(m), nil

	case KindParentDefined:
		return o.ParentDefined(), nil

	case KindParentID:
		if o.ParentID == nil {
			return false, nil
		}
		return q.Int.Eval(*o.ParentID), nil

	case KindParentNamespace, KindParentLabel:
		parent, err := resolveParent(o, frame)
		if err != nil {
			return false, nil
		}
		if q.Kind == KindParentNamespace {
			return q.Str.Eval(parent.Namespace), nil
		}
		return q.Str.Eval(parent.Label), nil

	case KindWithChildren:
		count := int64(0)
		for _, candidate := range frame.Objects() {
			if candidate.ParentID == nil || *candidate.ParentID != o.ID {
				continue
			}
			ok, err := e.Eval(ctx, *q.Child, candidate, frame)
			if err != nil {
				return false, err
			}
			if ok {
				count++
			}
		}
		return q.Count.Eval(count), nil

	case KindAttributeDefined:
		_, ok := o.GetAttribute(q.Namespace, q.Name)
		return ok, nil

	case KindAttributesEmpty:
		return len(o.Attributes) == 0, nil

	case KindAttributesJMESQuery:
		return e.evalJMES(q.JMESExpr, o)

	case KindUserDefinedObjectPredicate:
		if e.UDF == nil {
			return false, fmt.Errorf("query: no UDF registry configured")
		}
		name := udf.PluginFunctionName(q.Plugin, q.Symbol)
		if !e.UDF.IsRegistered(name) {
			if _, err := e.UDF.LoadPlugin(q.Plugin, q.Symbol, udf.ObjectPredicate); err != nil {
				return false, fmt.Errorf("query: loading UDF %s: %w", name, err)
			}
		}
		return e.UDF.CallPredicate(name, o)

	case KindEvalExpr:
		return e.evalLua(ctx, q.Source, o)

	case KindAnd:
		for _, child := range q.Children {
			ok, err := e.Eval(ctx, child, o, frame)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case KindOr:
		for _, child := range q.Children {
			ok, err := e.Eval(ctx, child, o, frame)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case KindNot:
		ok, err := e.Eval(ctx, *q.Child, o, frame)
		if err != nil {
			return false, err
		}
		return !ok, nil

	default:
		return false, fmt.Errorf("query: unknown kind %d", q.Kind)
	}
}

func evalBoxField(q Query, box bbox.Box) bool {
	switch q.Field {
	case BoxXCenter:
		return q.Float.Eval(box.XC)
	case BoxYCenter:
		return q.Float.Eval(box.YC)
	case BoxWidth:
		return q.Float.Eval(box.Width)
	case BoxHeight:
		return q.Float.Eval(box.Height)
	case BoxArea:
		return q.Float.Eval(box.Area())
	case BoxWidthToHeightRatio:
		return q.Float.Eval(box.WidthToHeightRatio())
	case BoxAngleDefined:
		return box.AngleDefined()
	case BoxAngle:
		return q.Float.Eval(box.AngleDegrees())
	default:
		return false
	}
}

func resolveParent(o *primitives.Object, frame *primitives.Frame) (*primitives.Object, error) {
	if o.ParentID == nil {
		return nil, primitives.ErrParentNotFound
	}
	return frame.GetObject(*o.ParentID)
}

// evalJMES runs expr against the object's canonical attribute map
// representation. Per the AttributesJMESQuery contract, the result is
// "true" unless it is null, an empty array, an empty object, or literal
// false.
func (e *Engine) evalJMES(expr string, o *primitives.Object) (bool, error) {
	attrs := make([]any, 0, len(o.Attributes))
	for _, a := range o.Attributes {
		m, err := a.ToMap()
		if err != nil {
			return false, err
		}
		attrs = append(attrs, m)
	}
	return runJMES(expr, attrs)
}
