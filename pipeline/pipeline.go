// Package pipeline implements the staged video-frame/batch container that
// routes frames and their derived objects across named processing stages,
// applying deferred per-frame updates along the way.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/insight-platform/go-savant-core/logger"
	"github.com/insight-platform/go-savant-core/metrics/prometheus"
	"github.com/insight-platform/go-savant-core/primitives"
)

var pipelineLog = logger.For("savant.pipeline")

// Pipeline holds a fixed set of named stages, each declared Frame-only or
// Batch-only at creation, plus a monotonically increasing id counter
// shared across every stage so that frame ids and batch ids never
// collide, whichever stage they are allocated in.
type Pipeline struct {
	mu        sync.RWMutex
	stages    map[string]*stage
	idCounter int64
}

// New returns an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{stages: make(map[string]*stage)}
}

func (p *Pipeline) nextID() int64 {
	return atomic.AddInt64(&p.idCounter, 1)
}

// AddStage declares a new named stage of the given kind. Fails if name is
// already in use.
func (p *Pipeline) AddStage(name string, kind StageKind) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.stages[name]; exists {
		return &StageError{Stage: name, Err: ErrDuplicateStage}
	}
	p.stages[name] = newStage(kind)
	return nil
}

func (p *Pipeline) getStage(name string) (*stage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.stages[name]
	if !ok {
		return nil, &StageError{Stage: name, Err: ErrStageNotFound}
	}
	return s, nil
}

// AddFrame allocates the next id and inserts frame into stageName, which
// must be a Frame-kind stage.
func (p *Pipeline) AddFrame(stageName string, frame *primitives.Frame) (int64, error) {
	start := time.Now()
	id, err := p.addFrame(stageName, frame)
	prometheus.RecordStageDuration(stageName, "frame", "add", time.Since(start).Seconds())
	logger.StageOp(pipelineLog, stageName, "add_frame", 1, err)
	return id, err
}

func (p *Pipeline) addFrame(stageName string, frame *primitives.Frame) (int64, error) {
	s, err := p.getStage(stageName)
	if err != nil {
		return 0, err
	}
	if s.kind != StageFrame {
		return 0, &StageError{Stage: stageName, Err: ErrStageTypeMismatch}
	}

	id := p.nextID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[id] = frame
	s.framePending[id] = nil
	prometheus.RecordStageElement(stageName, "added")
	return id, nil
}

// AddBatch allocates the next id and inserts batch into stageName, which
// must be a Batch-kind stage.
func (p *Pipeline) AddBatch(stageName string, batch *primitives.Batch) (int64, error) {
	start := time.Now()
	id, err := p.addBatch(stageName, batch)
	prometheus.RecordStageDuration(stageName, "batch", "add", time.Since(start).Seconds())
	logger.StageOp(pipelineLog, stageName, "add_batch", len(batch.IDs()), err)
	return id, err
}

func (p *Pipeline) addBatch(stageName string, batch *primitives.Batch) (int64, error) {
	s, err := p.getStage(stageName)
	if err != nil {
		return 0, err
	}
	if s.kind != StageBatch {
		return 0, &StageError{Stage: stageName, Err: ErrStageTypeMismatch}
	}

	id := p.nextID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[id] = batch
	s.batchPending[id] = nil
	prometheus.RecordStageElement(stageName, "added")
	return id, nil
}

// Del removes id from stageName, regardless of stage kind.
func (p *Pipeline) Del(stageName string, id int64) error {
	start := time.Now()
	err := p.del(stageName, id)
	prometheus.RecordStageDuration(stageName, "", "del", time.Since(start).Seconds())
	logger.StageOp(pipelineLog, stageName, "del", 1, err)
	return err
}

func (p *Pipeline) del(stageName string, id int64) error {
	s, err := p.getStage(stageName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.kind {
	case StageFrame:
		if _, ok := s.frames[id]; !ok {
			return &StageError{Stage: stageName, Err: ErrIDNotFound}
		}
		delete(s.frames, id)
		delete(s.framePending, id)
	case StageBatch:
		if _, ok := s.batches[id]; !ok {
			return &StageError{Stage: stageName, Err: ErrIDNotFound}
		}
		delete(s.batches, id)
		delete(s.batchPending, id)
	}
	prometheus.RecordStageElement(stageName, "removed")
	return nil
}

// GetIndependentFrame returns the frame stored under id in a Frame-kind
// stage.
func (p *Pipeline) GetIndependentFrame(stageName string, id int64) (*primitives.Frame, error) {
	s, err := p.getStage(stageName)
	if err != nil {
		return nil, err
	}
	if s.kind != StageFrame {
		return nil, &StageError{Stage: stageName, Err: ErrPayloadKindMismatch}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.frames[id]
	if !ok {
		return nil, &StageError{Stage: stageName, Err: ErrIDNotFound}
	}
	return f, nil
}

// GetBatch returns the batch stored under id in a Batch-kind stage.
func (p *Pipeline) GetBatch(stageName string, id int64) (*primitives.Batch, error) {
	s, err := p.getStage(stageName)
	if err != nil {
		return nil, err
	}
	if s.kind != StageBatch {
		return nil, &StageError{Stage: stageName, Err: ErrPayloadKindMismatch}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, &StageError{Stage: stageName, Err: ErrIDNotFound}
	}
	return b, nil
}

// GetBatchedFrame returns the frame keyed by frameID within batchID in a
// Batch-kind stage.
func (p *Pipeline) GetBatchedFrame(stageName string, batchID, frameID int64) (*primitives.Frame, error) {
	b, err := p.GetBatch(stageName, batchID)
	if err != nil {
		return nil, err
	}
	f, ok := b.Get(frameID)
	if !ok {
		return nil, &StageError{Stage: stageName, Err: ErrIDNotFound}
	}
	return f, nil
}

// AddFrameUpdate appends update to the pending queue of frameID in a
// Frame-kind stage.
func (p *Pipeline) AddFrameUpdate(stageName string, frameID int64, update VideoFrameUpdate) error {
	s, err := p.getStage(stageName)
	if err != nil {
		return err
	}
	if s.kind != StageFrame {
		return &StageError{Stage: stageName, Err: ErrPayloadKindMismatch}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.frames[frameID]; !ok {
		return &StageError{Stage: stageName, Err: ErrIDNotFound}
	}
	s.framePending[frameID] = append(s.framePending[frameID], update)
	return nil
}

// AddBatchedFrameUpdate appends update, tagged with frameID, to the pending
// queue of batchID in a Batch-kind stage.
func (p *Pipeline) AddBatchedFrameUpdate(stageName string, batchID, frameID int64, update VideoFrameUpdate) error {
	s, err := p.getStage(stageName)
	if err != nil {
		return err
	}
	if s.kind != StageBatch {
		return &StageError{Stage: stageName, Err: ErrPayloadKindMismatch}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	if !ok {
		return &StageError{Stage: stageName, Err: ErrIDNotFound}
	}
	if _, ok := b.Get(frameID); !ok {
		return &StageError{Stage: stageName, Err: ErrIDNotFound}
	}
	s.batchPending[batchID] = append(s.batchPending[batchID], batchedUpdate{frameID: frameID, update: update})
	return nil
}

// ApplyUpdates drains the pending queue for id and applies each update in
// order. An update failure stops the drain; updates already applied are
// not re-queued.
func (p *Pipeline) ApplyUpdates(stageName string, id int64) error {
	s, err := p.getStage(stageName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.kind {
	case StageFrame:
		f, ok := s.frames[id]
		if !ok {
			return &StageError{Stage: stageName, Err: ErrIDNotFound}
		}
		pending := s.framePending[id]
		for len(pending) > 0 {
			u := pending[0]
			pending = pending[1:]
			s.framePending[id] = pending
			if err := u.Apply(f); err != nil {
				return err
			}
		}
		return nil

	case StageBatch:
		b, ok := s.batches[id]
		if !ok {
			return &StageError{Stage: stageName, Err: ErrIDNotFound}
		}
		pending := s.batchPending[id]
		for len(pending) > 0 {
			u := pending[0]
			pending = pending[1:]
			s.batchPending[id] = pending
			f, ok := b.Get(u.frameID)
			if !ok {
				continue
			}
			if err := u.update.Apply(f); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// MoveAsIs removes ids from src and inserts them into dst unchanged. src
// and dst must exist and share the same StageKind. The move is
// all-or-nothing: if any id is missing from src, nothing is moved.
func (p *Pipeline) MoveAsIs(src, dst string, ids []int64) error {
	start := time.Now()
	err := p.moveAsIs(src, dst, ids)
	prometheus.RecordStageDuration(dst, "", "move", time.Since(start).Seconds())
	logger.StageOp(pipelineLog, dst, "move_as_is", len(ids), err)
	return err
}

func (p *Pipeline) moveAsIs(src, dst string, ids []int64) error {
	srcStage, err := p.getStage(src)
	if err != nil {
		return err
	}
	dstStage, err := p.getStage(dst)
	if err != nil {
		return err
	}
	if srcStage.kind != dstStage.kind {
		return &StageError{Stage: dst, Err: ErrStageTypeMismatch}
	}

	srcStage.mu.Lock()
	defer srcStage.mu.Unlock()
	if dstStage != srcStage {
		dstStage.mu.Lock()
		defer dstStage.mu.Unlock()
	}

	switch srcStage.kind {
	case StageFrame:
		for _, id := range ids {
			if _, ok := srcStage.frames[id]; !ok {
				return &StageError{Stage: src, Err: ErrIDNotFound}
			}
		}
		for _, id := range ids {
			dstStage.frames[id] = srcStage.frames[id]
			dstStage.framePending[id] = srcStage.framePending[id]
			delete(srcStage.frames, id)
			delete(srcStage.framePending, id)
		}
	case StageBatch:
		for _, id := range ids {
			if _, ok := srcStage.batches[id]; !ok {
				return &StageError{Stage: src, Err: ErrIDNotFound}
			}
		}
		for _, id := range ids {
			dstStage.batches[id] = srcStage.batches[id]
			dstStage.batchPending[id] = srcStage.batchPending[id]
			delete(srcStage.batches, id)
			delete(srcStage.batchPending, id)
		}
	}
	return nil
}

// MoveAndPackFrames removes each of frameIDs from the Frame-kind stage src,
// packs them into a new Batch keyed by their original frame ids, and
// inserts that batch into the Batch-kind stage dst under a freshly
// allocated batch id, which is returned. Each moved frame's pending
// updates are concatenated into the batch's pending queue, tagged with
// the originating frame id. Ids in frameIDs absent from src are silently
// skipped.
func (p *Pipeline) MoveAndPackFrames(src, dst string, frameIDs []int64) (int64, error) {
	start := time.Now()
	id, err := p.moveAndPackFrames(src, dst, frameIDs)
	prometheus.RecordStageDuration(dst, "batch", "pack", time.Since(start).Seconds())
	logger.StageOp(pipelineLog, dst, "move_and_pack_frames", len(frameIDs), err)
	return id, err
}

func (p *Pipeline) moveAndPackFrames(src, dst string, frameIDs []int64) (int64, error) {
	srcStage, err := p.getStage(src)
	if err != nil {
		return 0, err
	}
	if srcStage.kind != StageFrame {
		return 0, &StageError{Stage: src, Err: ErrStageTypeMismatch}
	}
	dstStage, err := p.getStage(dst)
	if err != nil {
		return 0, err
	}
	if dstStage.kind != StageBatch {
		return 0, &StageError{Stage: dst, Err: ErrStageTypeMismatch}
	}

	srcStage.mu.Lock()
	defer srcStage.mu.Unlock()
	dstStage.mu.Lock()
	defer dstStage.mu.Unlock()

	batch := primitives.NewBatch()
	var pending []batchedUpdate
	for _, id := range frameIDs {
		f, ok := srcStage.frames[id]
		if !ok {
			continue
		}
		batch.Add(id, f)
		for _, u := range srcStage.framePending[id] {
			pending = append(pending, batchedUpdate{frameID: id, update: u})
		}
		delete(srcStage.frames, id)
		delete(srcStage.framePending, id)
	}

	batchID := p.nextID()
	dstStage.batches[batchID] = batch
	dstStage.batchPending[batchID] = pending
	return batchID, nil
}

// MoveAndUnpackBatch dissolves the batch stored under batchID in the
// Batch-kind stage src into independent Frame payloads in the Frame-kind
// stage dst, keyed by their original frame ids, and re-dispatches each
// tagged pending update to the matching destination frame's queue. It is
// an error for a tagged update's frame id to be missing from the batch
// being unpacked.
func (p *Pipeline) MoveAndUnpackBatch(src, dst string, batchID int64) error {
	start := time.Now()
	err := p.moveAndUnpackBatch(src, dst, batchID)
	prometheus.RecordStageDuration(dst, "frame", "unpack", time.Since(start).Seconds())
	logger.StageOp(pipelineLog, dst, "move_and_unpack_batch", 1, err)
	return err
}

func (p *Pipeline) moveAndUnpackBatch(src, dst string, batchID int64) error {
	srcStage, err := p.getStage(src)
	if err != nil {
		return err
	}
	if srcStage.kind != StageBatch {
		return &StageError{Stage: src, Err: ErrStageTypeMismatch}
	}
	dstStage, err := p.getStage(dst)
	if err != nil {
		return err
	}
	if dstStage.kind != StageFrame {
		return &StageError{Stage: dst, Err: ErrStageTypeMismatch}
	}

	srcStage.mu.Lock()
	defer srcStage.mu.Unlock()
	dstStage.mu.Lock()
	defer dstStage.mu.Unlock()

	batch, ok := srcStage.batches[batchID]
	if !ok {
		return &StageError{Stage: src, Err: ErrIDNotFound}
	}

	for _, id := range batch.IDs() {
		f, _ := batch.Get(id)
		dstStage.frames[id] = f
		dstStage.framePending[id] = nil
	}

	for _, u := range srcStage.batchPending[batchID] {
		if _, ok := dstStage.frames[u.frameID]; !ok {
			return &StageError{Stage: dst, Err: ErrIDNotFound}
		}
		dstStage.framePending[u.frameID] = append(dstStage.framePending[u.frameID], u.update)
	}

	delete(srcStage.batches, batchID)
	delete(srcStage.batchPending, batchID)
	return nil
}
