package primitives

import (
	"github.com/google/uuid"

	"github.com/insight-platform/go-savant-core/attribute"
)

// Frame is a single unit of video metadata moving through a pipeline: the
// source it came from, its media content, and the set of objects detected
// within it.
type Frame struct {
	SourceID  string
	Framerate string
	Width     int
	Height    int

	Content           Content
	TranscodingMethod TranscodingMethod
	Codec             *string
	Keyframe          *bool

	TimeBaseNum int
	TimeBaseDen int
	PTS         int64
	DTS         *int64
	Duration    *int64

	CreationTimestampNs int64
	UUID                uuid.UUID

	Transformations []Transformation
	Attributes      map[attribute.Key]attribute.Attribute

	objects   map[int64]*Object
	destroyed bool
}

// NewFrame constructs a Frame with a fresh UUID and empty object/attribute
// sets. Width and height must be positive.
func NewFrame(sourceID, framerate string, width, height int, content Content, timeBaseNum, timeBaseDen int, pts int64, creationTimestampNs int64) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Frame{
		SourceID:            sourceID,
		Framerate:           framerate,
		Width:               width,
		Height:              height,
		Content:             content,
		TimeBaseNum:         timeBaseNum,
		TimeBaseDen:         timeBaseDen,
		PTS:                 pts,
		CreationTimestampNs: creationTimestampNs,
		UUID:                uuid.New(),
		Attributes:          make(map[attribute.Key]attribute.Attribute),
		objects:             make(map[int64]*Object),
	}, nil
}

// AddObject inserts an object into the frame, enforcing frame-unique ids,
// parent existence, and acyclic parentage. Matches the invariants the
// pipeline state manager relies on when resolving object graphs for a
// frame it owns.
func (f *Frame) AddObject(o *Object) error {
	if _, exists := f.objects[o.ID]; exists {
		return ErrDuplicateObjectID
	}
	if o.ParentID != nil {
		if *o.ParentID == o.ID {
			return ErrCyclicParent
		}
		parent, ok := f.objects[*o.ParentID]
		if !ok {
			return ErrParentNotFound
		}
		if f.wouldCycle(parent, o.ID) {
			return ErrCyclicParent
		}
	}
	if err := o.Validate(); err != nil {
		return err
	}
	f.objects[o.ID] = o
	return nil
}

// wouldCycle reports whether walking start's ancestor chain reaches
// candidateDescendant, which would make candidateDescendant its own ancestor
// once linked as start's child.
func (f *Frame) wouldCycle(start *Object, candidateDescendant int64) bool {
	seen := make(map[int64]bool)
	cur := start
	for cur != nil {
		if cur.ID == candidateDescendant {
			return true
		}
		if seen[cur.ID] {
			return true
		}
		seen[cur.ID] = true
		if cur.ParentID == nil {
			return false
		}
		next, ok := f.objects[*cur.ParentID]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// GetObject looks up an object by id.
func (f *Frame) GetObject(id int64) (*Object, error) {
	o, ok := f.objects[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return o, nil
}

// DeleteObject removes an object and clears any parent links pointing to it.
func (f *Frame) DeleteObject(id int64) error {
	if _, ok := f.objects[id]; !ok {
		return ErrObjectNotFound
	}
	delete(f.objects, id)
	for _, o := range f.objects {
		if o.ParentID != nil && *o.ParentID == id {
			o.ParentID = nil
		}
	}
	return nil
}

// Objects returns every object currently owned by the frame, in no
// particular order.
func (f *Frame) Objects() []*Object {
	out := make([]*Object, 0, len(f.objects))
	for _, o := range f.objects {
		out = append(out, o)
	}
	return out
}

// AddTransformation appends a transformation to the frame's processing
// history.
func (f *Frame) AddTransformation(t Transformation) {
	f.Transformations = append(f.Transformations, t)
}

// SetAttribute inserts or replaces a frame-level attribute.
func (f *Frame) SetAttribute(a attribute.Attribute) {
	f.Attributes[a.Key()] = a
}

// GetAttribute looks up a frame-level attribute by namespace and name.
func (f *Frame) GetAttribute(namespace, name string) (attribute.Attribute, bool) {
	a, ok := f.Attributes[attribute.Key{Namespace: namespace, Name: name}]
	return a, ok
}

// Destroy marks the frame as gone, invalidating any ObjectHandle still
// referencing it.
func (f *Frame) Destroy() {
	f.destroyed = true
}

// Destroyed reports whether Destroy has been called on this frame.
func (f *Frame) Destroyed() bool {
	return f.destroyed
}
