package activity

import "strings"

// Filter is the query window of a paged listing. A nil Status means any
// status, an empty Search means no text restriction.
type Filter struct {
	Limit  int
	Offset int
	Status *Status
	Search string
}

type FilterOption func(*Filter)

func WithStatus(status *Status) FilterOption {
	if status == nil {
		return nil
	}
	s := *status
	return func(f *Filter) {
		f.Status = &s
	}
}

func WithSearch(search string) FilterOption {
	if search == "" {
		return nil
	}
	return func(f *Filter) {
		f.Search = search
	}
}

func NewFilter(limit, offset int, options ...FilterOption) Filter {
	f := Filter{Limit: limit, Offset: offset}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&f)
	}
	return f
}

// Matches reports whether a satisfies the status and search predicates.
// Search is a case-insensitive substring match on name or tags.
func (f Filter) Matches(a *Activity) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	return containsFold(a.Name, f.Search) || containsFold(a.Tags, f.Search)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
