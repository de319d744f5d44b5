package primitives

// Batch is an insertion-ordered collection of frames keyed by the id the
// pipeline state manager assigned them. Ordering matters for batch
// operators that must preserve arrival order when fanning results back out.
type Batch struct {
	frames map[int64]*Frame
	order  []int64
}

// NewBatch returns an empty Batch.
func NewBatch() *Batch {
	return &Batch{frames: make(map[int64]*Frame)}
}

// Add inserts a frame under id, appending to insertion order. Re-adding an
// existing id overwrites the frame in place without changing its position.
func (b *Batch) Add(id int64, f *Frame) {
	if _, exists := b.frames[id]; !exists {
		b.order = append(b.order, id)
	}
	b.frames[id] = f
}

// Get returns the frame stored under id, if any.
func (b *Batch) Get(id int64) (*Frame, bool) {
	f, ok := b.frames[id]
	return f, ok
}

// Delete removes a frame from the batch.
func (b *Batch) Delete(id int64) {
	if _, ok := b.frames[id]; !ok {
		return
	}
	delete(b.frames, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of frames in the batch.
func (b *Batch) Len() int {
	return len(b.order)
}

// IDs returns the frame ids in insertion order.
func (b *Batch) IDs() []int64 {
	out := make([]int64, len(b.order))
	copy(out, b.order)
	return out
}

// Frames returns the batch's frames in insertion order.
func (b *Batch) Frames() []*Frame {
	out := make([]*Frame, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.frames[id])
	}
	return out
}
