package query

import "fmt"

// Range is a byte range within the query string.
type Range struct {
	Loc    int
	Length int
}

// End returns the offset just past the range.
func (r Range) End() int { return r.Loc + r.Length }

func (r Range) join(o Range) Range {
	lo, hi := r.Loc, r.End()
	if o.Loc < lo {
		lo = o.Loc
	}
	if o.End() > hi {
		hi = o.End()
	}
	return Range{Loc: lo, Length: hi - lo}
}

// ErrorDesc locates a problem inside a query.
type ErrorDesc struct {
	Msg   string
	Range Range
}

// QueryError is returned when an invalid query is used.
type QueryError struct {
	Query string
	Desc  ErrorDesc
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %s at offset %d", e.Query, e.Desc.Msg, e.Desc.Range.Loc)
}

// Excerpt returns the part of the query the error points at.
func (e *QueryError) Excerpt() string {
	lo, hi := e.Desc.Range.Loc, e.Desc.Range.End()
	if lo > len(e.Query) {
		lo = len(e.Query)
	}
	if hi > len(e.Query) {
		hi = len(e.Query)
	}
	return e.Query[lo:hi]
}
