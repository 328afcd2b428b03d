package service

import (
	"context"

	"activityPlanner/internal/models/activity"
)

// DefaultPageSize is the number of rows a pager asks for per load.
const DefaultPageSize = 30

type Lister interface {
	All(ctx context.Context, limit, offset int, status *activity.Status, search string) ([]*activity.Activity, error)
}

// Page is one incremental load. Fresh tells the shell to clear what it shows
// before appending Items; Empty means there is nothing to show at all.
type Page struct {
	Items []*activity.Activity
	Fresh bool
	Empty bool
}

// Pager drives infinite-scroll loading. The offset advances by the number of
// rows actually returned, so a short last page is followed by an empty one.
type Pager struct {
	lister   Lister
	pageSize int
	offset   int
	status   *activity.Status
	search   string
}

func NewPager(lister Lister, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{lister: lister, pageSize: pageSize}
}

// SetFilter replaces the status and search filters and rewinds to the first page.
func (p *Pager) SetFilter(status *activity.Status, search string) {
	if status != nil {
		s := *status
		status = &s
	}
	p.status = status
	p.search = search
	p.Reset()
}

func (p *Pager) Reset() {
	p.offset = 0
}

// Seek resumes from an offset a stateless caller kept on its side.
func (p *Pager) Seek(offset int) {
	p.offset = max(offset, 0)
}

func (p *Pager) Offset() int {
	return p.offset
}

func (p *Pager) PageSize() int {
	return p.pageSize
}

func (p *Pager) Next(ctx context.Context) (Page, error) {
	items, err := p.lister.All(ctx, p.pageSize, p.offset, p.status, p.search)
	if err != nil {
		return Page{}, err
	}
	page := Page{
		Items: items,
		Fresh: p.offset == 0,
		Empty: len(items) == 0 && p.offset == 0,
	}
	p.offset += len(items)
	return page, nil
}
