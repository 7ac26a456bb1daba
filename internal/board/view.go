package board

import "github.com/spec-kit/fluxboard/internal/domain"

// View holds the caller side of the table: the fetched list, the search term
// and the current page. Changing the list or the term goes back to page 1.
type View struct {
	flux     []domain.Flux
	term     string
	filtered []domain.Flux
	page     int
	pageSize int
}

// NewView builds a view on page 1. A non-positive pageSize uses DefaultPageSize.
func NewView(flux []domain.Flux, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v := &View{pageSize: pageSize}
	v.SetFlux(flux)
	return v
}

// SetFlux replaces the list, typically after a re-fetch.
func (v *View) SetFlux(flux []domain.Flux) {
	v.flux = flux
	v.refilter()
}

// SetTerm changes the search term.
func (v *View) SetTerm(term string) {
	v.term = term
	v.refilter()
}

func (v *View) refilter() {
	v.filtered = Search(v.flux, v.term)
	v.page = 1
}

// Term returns the current search term.
func (v *View) Term() string { return v.term }

// CurrentPage returns the 1-based page number.
func (v *View) CurrentPage() int { return v.page }

// PageSize returns the number of rows per page.
func (v *View) PageSize() int { return v.pageSize }

// Total returns the number of flux matching the term.
func (v *View) Total() int { return len(v.filtered) }

// PageCount returns the number of pages of the filtered list.
func (v *View) PageCount() int { return PageCount(v.filtered, v.pageSize) }

// Filtered returns every flux matching the term.
func (v *View) Filtered() []domain.Flux { return v.filtered }

// Rows returns the current page of the filtered list.
func (v *View) Rows() []domain.Flux { return Page(v.filtered, v.page, v.pageSize) }

// GoTo moves to page n, clamped to the available pages.
func (v *View) GoTo(n int) {
	last := v.PageCount()
	if last < 1 {
		last = 1
	}
	switch {
	case n < 1:
		n = 1
	case n > last:
		n = last
	}
	v.page = n
}

// Next moves one page forward.
func (v *View) Next() { v.GoTo(v.page + 1) }

// Prev moves one page back.
func (v *View) Prev() { v.GoTo(v.page - 1) }
