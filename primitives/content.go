package primitives

// ContentKind discriminates a Frame's payload location, the same
// exactly-one-of-these-fields shape as the teacher's
// types.MediaContent (Data / FilePath / URL), generalized here to the
// video frame's External/Internal/None variants.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentExternal
	ContentInternal
)

// TranscodingMethod names how frame content is encoded for transport.
type TranscodingMethod int

const (
	TranscodingCopy TranscodingMethod = iota
	TranscodingEncoded
)

// Content is a tagged Frame payload variant.
type Content struct {
	Kind Kind
	// External fields (ContentExternal)
	Method   string
	Location *string
	// Internal fields (ContentInternal)
	Data []byte
}

// Kind is re-exported under Content for readability at call sites
// (content.Kind == primitives.ContentExternal).
type Kind = ContentKind

// NoneContent returns a Frame with no payload (e.g. metadata-only frames).
func NoneContent() Content {
	return Content{Kind: ContentNone}
}

// ExternalContent returns an external-content variant: the frame's bytes
// live outside the message (e.g. referenced by a storage location).
func ExternalContent(method string, location *string) Content {
	return Content{Kind: ContentExternal, Method: method, Location: location}
}

// InternalContent returns an internal-content variant carrying the frame's
// encoded bytes inline.
func InternalContent(data []byte) Content {
	return Content{Kind: ContentInternal, Data: data}
}
