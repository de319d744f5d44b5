package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insight-platform/go-savant-core/primitives"
)

func newTestFrame(t *testing.T) *primitives.Frame {
	t.Helper()
	f, err := primitives.NewFrame("cam0", "30/1", 1280, 720, primitives.NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)
	return f
}

type pauseUpdate struct {
	applied *bool
}

func (u pauseUpdate) Apply(f *primitives.Frame) error {
	*u.applied = true
	return nil
}

type failingUpdate struct{}

func (failingUpdate) Apply(f *primitives.Frame) error {
	return errors.New("boom")
}

func TestPipeline_AddStage_Duplicate(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	err := p.AddStage("in", StageFrame)
	assert.ErrorIs(t, err, ErrDuplicateStage)
}

func TestPipeline_AddFrame_WrongStageKind(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("batched", StageBatch))
	_, err := p.AddFrame("batched", newTestFrame(t))
	assert.ErrorIs(t, err, ErrStageTypeMismatch)
}

func TestPipeline_AddFrame_AllocatesUniqueIDs(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	id1, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)
	id2, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestPipeline_GetIndependentFrame_NotFound(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	_, err := p.GetIndependentFrame("in", 999)
	assert.ErrorIs(t, err, ErrIDNotFound)
}

func TestPipeline_Del(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	id, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)
	require.NoError(t, p.Del("in", id))
	_, err = p.GetIndependentFrame("in", id)
	assert.ErrorIs(t, err, ErrIDNotFound)
}

func TestPipeline_AddFrameUpdate_ApplyUpdates(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	id, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)

	applied := false
	require.NoError(t, p.AddFrameUpdate("in", id, pauseUpdate{applied: &applied}))
	require.NoError(t, p.ApplyUpdates("in", id))
	assert.True(t, applied)
}

func TestPipeline_ApplyUpdates_StopsOnFailure(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	id, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)

	applied := false
	require.NoError(t, p.AddFrameUpdate("in", id, failingUpdate{}))
	require.NoError(t, p.AddFrameUpdate("in", id, pauseUpdate{applied: &applied}))

	err = p.ApplyUpdates("in", id)
	assert.Error(t, err)
	assert.False(t, applied)
}

func TestPipeline_MoveAsIs(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	require.NoError(t, p.AddStage("out", StageFrame))
	id, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)

	require.NoError(t, p.MoveAsIs("in", "out", []int64{id}))
	_, err = p.GetIndependentFrame("in", id)
	assert.ErrorIs(t, err, ErrIDNotFound)
	_, err = p.GetIndependentFrame("out", id)
	assert.NoError(t, err)
}

func TestPipeline_MoveAsIs_KindMismatch(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	require.NoError(t, p.AddStage("out", StageBatch))
	id, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)

	err = p.MoveAsIs("in", "out", []int64{id})
	assert.ErrorIs(t, err, ErrStageTypeMismatch)
}

func TestPipeline_MoveAsIs_AllOrNothing(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	require.NoError(t, p.AddStage("out", StageFrame))
	id, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)

	err = p.MoveAsIs("in", "out", []int64{id, 999})
	assert.ErrorIs(t, err, ErrIDNotFound)
	// id should still be present in src since the move was aborted.
	_, err = p.GetIndependentFrame("in", id)
	assert.NoError(t, err)
}

func TestPipeline_MoveAndPackFrames(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("in", StageFrame))
	require.NoError(t, p.AddStage("batched", StageBatch))

	id1, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)
	id2, err := p.AddFrame("in", newTestFrame(t))
	require.NoError(t, err)

	applied := false
	require.NoError(t, p.AddFrameUpdate("in", id1, pauseUpdate{applied: &applied}))

	batchID, err := p.MoveAndPackFrames("in", "batched", []int64{id1, id2, 999})
	require.NoError(t, err)

	batch, err := p.GetBatch("batched", batchID)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Len())

	require.NoError(t, p.ApplyUpdates("batched", batchID))
	assert.True(t, applied)

	_, err = p.GetIndependentFrame("in", id1)
	assert.ErrorIs(t, err, ErrIDNotFound)
}

func TestPipeline_MoveAndUnpackBatch(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("batched", StageBatch))
	require.NoError(t, p.AddStage("out", StageFrame))

	batch := primitives.NewBatch()
	f1 := newTestFrame(t)
	batch.Add(1, f1)
	batchID, err := p.AddBatch("batched", batch)
	require.NoError(t, err)

	applied := false
	require.NoError(t, p.AddBatchedFrameUpdate("batched", batchID, 1, pauseUpdate{applied: &applied}))

	require.NoError(t, p.MoveAndUnpackBatch("batched", "out", batchID))

	_, err = p.GetIndependentFrame("out", 1)
	require.NoError(t, err)

	require.NoError(t, p.ApplyUpdates("out", 1))
	assert.True(t, applied)

	_, err = p.GetBatch("batched", batchID)
	assert.ErrorIs(t, err, ErrIDNotFound)
}

func TestPipeline_MoveAndUnpackBatch_MissingFrameIsError(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("batched", StageBatch))
	require.NoError(t, p.AddStage("out", StageFrame))

	batch := primitives.NewBatch()
	batch.Add(1, newTestFrame(t))
	batchID, err := p.AddBatch("batched", batch)
	require.NoError(t, err)

	// Tag an update against a frame id that is not actually in the batch.
	s, err := p.getStage("batched")
	require.NoError(t, err)
	s.batchPending[batchID] = append(s.batchPending[batchID], batchedUpdate{frameID: 42, update: failingUpdate{}})

	err = p.MoveAndUnpackBatch("batched", "out", batchID)
	assert.ErrorIs(t, err, ErrIDNotFound)
}

func TestPipeline_GetBatchedFrame(t *testing.T) {
	p := New()
	require.NoError(t, p.AddStage("batched", StageBatch))

	batch := primitives.NewBatch()
	f1 := newTestFrame(t)
	batch.Add(7, f1)
	batchID, err := p.AddBatch("batched", batch)
	require.NoError(t, err)

	f, err := p.GetBatchedFrame("batched", batchID, 7)
	require.NoError(t, err)
	assert.Same(t, f1, f)
}
