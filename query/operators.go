package query

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/insight-platform/go-savant-core/primitives"
	"github.com/insight-platform/go-savant-core/udf"
)

// Filter returns the subset of objs matching q, preserving input order.
func (e *Engine) Filter(ctx context.Context, q Query, objs []*primitives.Object, frame *primitives.Frame) ([]*primitives.Object, error) {
	out := make([]*primitives.Object, 0, len(objs))
	for _, o := range objs {
		ok, err := e.Eval(ctx, q, o, frame)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// Partition splits objs into those matching q and those that don't,
// preserving input order within each half.
func (e *Engine) Partition(ctx context.Context, q Query, objs []*primitives.Object, frame *primitives.Frame) (matching, rest []*primitives.Object, err error) {
	for _, o := range objs {
		ok, evalErr := e.Eval(ctx, q, o, frame)
		if evalErr != nil {
			return nil, nil, evalErr
		}
		if ok {
			matching = append(matching, o)
		} else {
			rest = append(rest, o)
		}
	}
	return matching, rest, nil
}

// FrameObjects pairs a frame id with the objects to evaluate within it, the
// unit the batch operators fan out over.
type FrameObjects struct {
	FrameID int64
	Frame   *primitives.Frame
	Objects []*primitives.Object
}

// BatchFilter runs Filter independently per frame, possibly in parallel.
// The result contains only frame ids whose filtered set is non-empty.
func (e *Engine) BatchFilter(ctx context.Context, q Query, batch []FrameObjects) (map[int64][]*primitives.Object, error) {
	results := make([][]*primitives.Object, len(batch))
	sem := semaphore.NewWeighted(e.maxConcurrentBatchWorkers())
	g, gctx := errgroup.WithContext(ctx)
	for i, fo := range batch {
		i, fo := i, fo
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			filtered, err := e.Filter(gctx, q, fo.Objects, fo.Frame)
			if err != nil {
				return err
			}
			results[i] = filtered
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int64][]*primitives.Object, len(batch))
	for i, fo := range batch {
		if len(results[i]) > 0 {
			out[fo.FrameID] = results[i]
		}
	}
	return out, nil
}

// BatchPartition runs Partition independently per frame, possibly in
// parallel. Both returned maps contain every input frame id.
func (e *Engine) BatchPartition(ctx context.Context, q Query, batch []FrameObjects) (matching, rest map[int64][]*primitives.Object, err error) {
	matchResults := make([][]*primitives.Object, len(batch))
	restResults := make([][]*primitives.Object, len(batch))

	sem := semaphore.NewWeighted(e.maxConcurrentBatchWorkers())
	g, gctx := errgroup.WithContext(ctx)
	for i, fo := range batch {
		i, fo := i, fo
		if semErr := sem.Acquire(gctx, 1); semErr != nil {
			return nil, nil, semErr
		}
		g.Go(func() error {
			defer sem.Release(1)
			m, r, evalErr := e.Partition(gctx, q, fo.Objects, fo.Frame)
			if evalErr != nil {
				return evalErr
			}
			matchResults[i] = m
			restResults[i] = r
			return nil
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		return nil, nil, waitErr
	}

	matching = make(map[int64][]*primitives.Object, len(batch))
	rest = make(map[int64][]*primitives.Object, len(batch))
	for i, fo := range batch {
		matching[fo.FrameID] = matchResults[i]
		rest[fo.FrameID] = restResults[i]
	}
	return matching, rest, nil
}

// MapUDF invokes the registered object-map-modifier udfName for each
// object in order and collects its results. The first error aborts the
// whole call.
func MapUDF(registry *udf.Registry, udfName string, objs []*primitives.Object) ([]map[string]any, error) {
	out := make([]map[string]any, len(objs))
	for i, o := range objs {
		m, err := registry.CallMapFunc(udfName, o)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// ForeachUDF invokes the registered object-inplace-modifier udfName for
// each object in order, mutating it, and returns one error slot per
// object (nil on success) rather than aborting on the first failure.
func ForeachUDF(registry *udf.Registry, udfName string, objs []*primitives.Object) []error {
	out := make([]error, len(objs))
	for i, o := range objs {
		out[i] = registry.CallModifier(udfName, o)
	}
	return out
}
