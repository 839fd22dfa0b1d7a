package result

// Result is a single nearest-neighbor hit as returned by the vector store.
// Distance is the store's raw metric value: lower means more similar.
type Result struct {
	id       string
	content  string
	distance float64
}

// New creates a search result.
func New(id, content string, distance float64) Result {
	return Result{id: id, content: content, distance: distance}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Content returns the document content.
func (r *Result) Content() string { return r.content }

// Distance returns the distance between the query and the document.
func (r *Result) Distance() float64 { return r.distance }
