package domain

import "strings"

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Normalize returns ASC for anything that is not a recognised direction.
func (d SortDirection) Normalize() SortDirection {
	if strings.EqualFold(string(d), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// QueryOptions describes a generic filtered read. OrderBy and Filters keys are
// matched against the live table schema and dropped when they are not columns.
// Page and Limit are pointers so that an unset value is distinguishable from 0.
type QueryOptions struct {
	Page           *int
	Limit          *int
	OrderBy        string
	OrderDirection SortDirection
	Search         string
	Filters        map[string]any
}

// IntPtr is a small helper for building QueryOptions literals.
func IntPtr(v int) *int {
	return &v
}
