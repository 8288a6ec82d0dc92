package store

import "errors"

var (
	// ErrNotFound is returned when no row matches, including rows that exist
	// outside the caller's scope.
	ErrNotFound = errors.New("record not found")
	// ErrReferenced is returned when a delete is blocked by rows pointing at
	// the target.
	ErrReferenced = errors.New("record is still referenced")
	// ErrDuplicate is returned when a write collides with a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Lookup is the comparison a filter applies.
type Lookup string

const (
	LookupExact     Lookup = "exact"
	LookupIContains Lookup = "icontains"
)

// Filter narrows a listing on one named field. Field names are the public
// query names, e.g. "engine_model__name" or "machine__serial_number".
type Filter struct {
	Field  string
	Lookup Lookup
	Value  any
}

// Order sorts a listing on one public field name.
type Order struct {
	Field string
	Desc  bool
}

// ListQuery describes one page of a scoped listing. Unknown filter and order
// fields are ignored by the store; callers validate them first.
type ListQuery struct {
	Filters []Filter
	Orders  []Order
	Limit   int
	Offset  int
}
