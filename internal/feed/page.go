package feed

// DefaultLimit is the page size applied when the caller sends none.
const DefaultLimit = 10

// SortDir is a sort direction as received from the API.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Sort is a caller-requested ordering. When a caller picks its own sort
// field, no creation-timestamp tie-break is added; ties on that field are
// returned in storage order. That matches the documented listing contract.
type Sort struct {
	Field string
	Dir   SortDir
}

// Options carries the listing parameters common to all feed endpoints.
type Options struct {
	Limit   int
	Query   string  // free-text search, empty = no search stage
	OwnerID int64   // scope to one owner, 0 = no scoping
	After   *Cursor // continuation point, nil = first page
	Sort    *Sort   // nil = created_at descending with id tie-break
}

// NormalizeLimit clamps a caller-supplied limit to a usable value.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// Page is the feed response envelope.
//
// HasNextPage is deliberately the "page is exactly full" approximation: a
// final page whose size equals the limit reports true even when nothing
// follows. Callers depend on the documented heuristic, so it is preserved
// rather than replaced with an existence probe.
type Page[T any] struct {
	Docs        []T    `json:"docs"`
	NextCursor  string `json:"nextCursor,omitempty"`
	HasNextPage bool   `json:"hasNextPage"`
}

// NewPage wraps one page of documents. last derives the continuation cursor
// from the final document of the page.
func NewPage[T any](docs []T, limit int, last func(T) Cursor) Page[T] {
	page := Page[T]{Docs: docs}
	if len(docs) > 0 {
		page.NextCursor = last(docs[len(docs)-1]).Encode()
	}
	page.HasNextPage = limit > 0 && len(docs) == limit
	return page
}
