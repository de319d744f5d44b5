package pipeline

import (
	"sync"

	"github.com/insight-platform/go-savant-core/primitives"
)

// StageKind declares whether a stage holds independent frames or packed
// batches. The declaration is fixed at AddStage time and never changes.
type StageKind int

const (
	StageFrame StageKind = iota
	StageBatch
)

// VideoFrameUpdate is a deferred mutation queued against a frame (or a
// frame within a batch) and applied later by ApplyUpdates.
type VideoFrameUpdate interface {
	Apply(f *primitives.Frame) error
}

type batchedUpdate struct {
	frameID int64
	update  VideoFrameUpdate
}

// stage is a named container of either Frame or Batch payloads, each with
// its own pending-update queue. Each stage carries its own RWMutex so that
// reads against one stage never block writers working on another.
type stage struct {
	mu   sync.RWMutex
	kind StageKind

	frames       map[int64]*primitives.Frame
	framePending map[int64][]VideoFrameUpdate

	batches       map[int64]*primitives.Batch
	batchPending  map[int64][]batchedUpdate
}

func newStage(kind StageKind) *stage {
	s := &stage{kind: kind}
	switch kind {
	case StageFrame:
		s.frames = make(map[int64]*primitives.Frame)
		s.framePending = make(map[int64][]VideoFrameUpdate)
	case StageBatch:
		s.batches = make(map[int64]*primitives.Batch)
		s.batchPending = make(map[int64][]batchedUpdate)
	}
	return s
}
