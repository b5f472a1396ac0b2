package data

import (
	"fmt"
	"strings"

	"github.com/ncobase/feedsync/paging"
)

// Collections
const (
	CollectionPosts    = "posts"
	CollectionUsers    = "users"
	CollectionAccounts = "accounts"
)

// Op is a filter operator understood by every store.
type Op int

const (
	// OpEq matches a field equal to Value.
	OpEq Op = iota
	// OpIn matches a scalar field equal to any element of Value ([]string).
	OpIn
	// OpArrayContains matches an array field holding Value.
	OpArrayContains
	// OpContains matches a string field containing Value, case-insensitively.
	OpContains
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpIn:
		return "in"
	case OpArrayContains:
		return "array-contains"
	case OpContains:
		return "contains"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Filter is a single predicate of a Query.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %v", f.Field, f.Op, f.Value)
}

// Query is a store-neutral page request: all filters are ANDed, results are
// ordered by OrderBy with the id as tie-breaker, and StartAfter resumes
// strictly after the given cursor.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	StartAfter *paging.Cursor
	Limit      int
}

func (q *Query) String() string {
	parts := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		parts = append(parts, f.String())
	}
	dir := "asc"
	if q.Desc {
		dir = "desc"
	}
	return fmt.Sprintf("%s where [%s] order by %s %s after %s limit %d",
		q.Collection, strings.Join(parts, ", "), q.OrderBy, dir, q.StartAfter, q.Limit)
}
