// Package primitives implements the video object and video frame entities
// that the match query engine and pipeline state manager operate over.
package primitives

import (
	"github.com/insight-platform/go-savant-core/attribute"
	"github.com/insight-platform/go-savant-core/bbox"
)

// Object is a detected entity within a Frame: id, namespace/label,
// detection box, optional confidence, optional track, optional parent link,
// and a set of namespaced attributes.
type Object struct {
	ID         int64
	Namespace  string
	Label      string
	Detection  bbox.Box
	Confidence *float64
	TrackID    *int64
	Track      *bbox.Box
	ParentID   *int64
	Attributes map[attribute.Key]attribute.Attribute
}

// NewObject creates an Object with an empty attribute set. The caller is
// responsible for assigning a frame-unique ID before calling Frame.AddObject.
func NewObject(id int64, namespace, label string, detection bbox.Box) *Object {
	return &Object{
		ID:         id,
		Namespace:  namespace,
		Label:      label,
		Detection:  detection,
		Attributes: make(map[attribute.Key]attribute.Attribute),
	}
}

// Validate enforces the track_id/track_box consistency invariant. Parent
// existence and cycle-freedom are enforced by Frame.AddObject /
// Frame.SetParent, which have the frame-level context needed to check them.
func (o *Object) Validate() error {
	if (o.TrackID == nil) != (o.Track == nil) {
		return ErrTrackBoxMismatch
	}
	return o.Detection.Validate()
}

// SetAttribute inserts or replaces an attribute by its (namespace, name) key.
func (o *Object) SetAttribute(a attribute.Attribute) {
	o.Attributes[a.Key()] = a
}

// GetAttribute looks up an attribute by namespace and name.
func (o *Object) GetAttribute(namespace, name string) (attribute.Attribute, bool) {
	a, ok := o.Attributes[attribute.Key{Namespace: namespace, Name: name}]
	return a, ok
}

// DeleteAttribute removes an attribute by namespace and name.
func (o *Object) DeleteAttribute(namespace, name string) {
	delete(o.Attributes, attribute.Key{Namespace: namespace, Name: name})
}

// TrackDefined reports whether the object has a track.
func (o *Object) TrackDefined() bool {
	return o.TrackID != nil
}

// ParentDefined reports whether the object has a parent link.
func (o *Object) ParentDefined() bool {
	return o.ParentID != nil
}

// ConfidenceDefined reports whether the object carries a detection confidence.
func (o *Object) ConfidenceDefined() bool {
	return o.Confidence != nil
}
