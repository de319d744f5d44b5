package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insight-platform/go-savant-core/bbox"
)

func newTestBox() bbox.Box {
	return bbox.New(10, 10, 4, 4, nil)
}

func TestNewFrame_InvalidDimensions(t *testing.T) {
	_, err := NewFrame("cam0", "30/1", 0, 720, NoneContent(), 1, 30, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestFrame_AddObject_DuplicateID(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)

	o1 := NewObject(1, "detector", "person", newTestBox())
	require.NoError(t, f.AddObject(o1))

	o2 := NewObject(1, "detector", "car", newTestBox())
	assert.ErrorIs(t, f.AddObject(o2), ErrDuplicateObjectID)
}

func TestFrame_AddObject_ParentNotFound(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)

	parentID := int64(99)
	o := NewObject(1, "detector", "person", newTestBox())
	o.ParentID = &parentID
	assert.ErrorIs(t, f.AddObject(o), ErrParentNotFound)
}

func TestFrame_AddObject_SelfParentCycle(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)

	selfID := int64(1)
	o := NewObject(1, "detector", "person", newTestBox())
	o.ParentID = &selfID
	assert.ErrorIs(t, f.AddObject(o), ErrCyclicParent)
}

func TestFrame_AddObject_ParentChainOK(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)

	o1 := NewObject(1, "detector", "person", newTestBox())
	require.NoError(t, f.AddObject(o1))

	id1 := int64(1)
	o2 := NewObject(2, "detector", "person", newTestBox())
	o2.ParentID = &id1
	require.NoError(t, f.AddObject(o2))

	id2 := int64(2)
	o3 := NewObject(3, "detector", "person", newTestBox())
	o3.ParentID = &id2
	require.NoError(t, f.AddObject(o3))
}

func TestFrame_AddObject_TrackBoxMismatch(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)

	trackID := int64(5)
	o := NewObject(1, "detector", "person", newTestBox())
	o.TrackID = &trackID
	assert.ErrorIs(t, f.AddObject(o), ErrTrackBoxMismatch)
}

func TestFrame_DeleteObject_ClearsChildParentLinks(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)

	o1 := NewObject(1, "detector", "person", newTestBox())
	require.NoError(t, f.AddObject(o1))

	id1 := int64(1)
	o2 := NewObject(2, "detector", "person", newTestBox())
	o2.ParentID = &id1
	require.NoError(t, f.AddObject(o2))

	require.NoError(t, f.DeleteObject(1))
	child, err := f.GetObject(2)
	require.NoError(t, err)
	assert.Nil(t, child.ParentID)
}

func TestFrame_UUIDAssigned(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", f.UUID.String())
}

func TestFrame_Destroy(t *testing.T) {
	f, err := NewFrame("cam0", "30/1", 1280, 720, NoneContent(), 1, 30, 0, 0)
	require.NoError(t, err)
	assert.False(t, f.Destroyed())
	f.Destroy()
	assert.True(t, f.Destroyed())
}
