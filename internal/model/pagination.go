package model

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 100

	// MaxPage is the last page whose offset fits an int64 at MaxLimit.
	// The page tag below repeats it as a literal.
	MaxPage = math.MaxInt64/MaxLimit + 1
)

// Sort selects the time ordering of farm listings.
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

// Valid reports whether s is one of the supported sort methods.
func (s Sort) Valid() bool {
	return s == SortNewest || s == SortOldest
}

// Pagination is a resolved page request. Page and Limit are always >= 1.
type Pagination struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page: limit*(page-1).
func (p Pagination) Offset() int {
	return p.Limit * (p.Page - 1)
}

// PageParams are the optional paging fields shared by every listing request.
// Nil means "not sent"; a sent value is always validated. Both accept a JSON
// number or a string of digits.
type PageParams struct {
	Page  *int `json:"page" validate:"omitnil,min=1,max=92233720368547759"`
	Limit *int `json:"limit" validate:"omitnil,min=1,max=100"`
}

// Pagination resolves the defaults.
func (p PageParams) Pagination() Pagination {
	out := Pagination{Page: DefaultPage, Limit: DefaultLimit}
	if p.Page != nil {
		out.Page = *p.Page
	}
	if p.Limit != nil {
		out.Limit = *p.Limit
	}
	return out
}

// SortParam is the optional sort field.
type SortParam struct {
	Sort *string `json:"sort" validate:"omitnil,oneof=newest oldest"`
}

// SortMethod resolves the default. Unknown values fall back to newest.
func (p SortParam) SortMethod() Sort {
	if p.Sort == nil || !Sort(*p.Sort).Valid() {
		return SortNewest
	}
	return Sort(*p.Sort)
}
