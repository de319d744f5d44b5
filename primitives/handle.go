package primitives

// ObjectHandle is a borrowed reference to an object living inside a frame.
// It resolves lazily so that callers who hold a handle across a pipeline
// operation observe ErrFrameGone instead of operating on a stale pointer
// once the owning frame has been destroyed or moved out of the pipeline.
type ObjectHandle struct {
	frame *Frame
	id    int64
}

// NewObjectHandle returns a handle borrowing object id from frame.
func NewObjectHandle(frame *Frame, id int64) ObjectHandle {
	return ObjectHandle{frame: frame, id: id}
}

// Resolve dereferences the handle, returning ErrFrameGone if the owning
// frame was destroyed and ErrObjectNotFound if the object was removed from
// a still-live frame.
func (h ObjectHandle) Resolve() (*Object, error) {
	if h.frame == nil || h.frame.Destroyed() {
		return nil, ErrFrameGone
	}
	return h.frame.GetObject(h.id)
}

// ID returns the object id this handle refers to, without resolving it.
func (h ObjectHandle) ID() int64 {
	return h.id
}
