// Package paginator splits an ordered result set into fixed-size pages.
package paginator

import (
	"strconv"
	"strings"
)

// Paginator knows the size of a result set and the page size.
type Paginator struct {
	Total   int64
	PerPage int
}

// New returns a Paginator for total items split into pages of perPage.
// A non-positive perPage is treated as 1.
func New(total int64, perPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}
	return &Paginator{Total: total, PerPage: perPage}
}

// NumPages is never less than 1: an empty result set still has an empty first page.
func (p *Paginator) NumPages() int {
	if p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Page resolves a raw ?page= value. Values that are not integers select the
// first page; out-of-range numbers clamp to the nearest valid page.
func (p *Paginator) Page(raw string) *Page {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number < 1 {
		number = 1
	}
	if last := p.NumPages(); number > last {
		number = last
	}
	return &Page{Number: number, paginator: p}
}

// Page is one window of the result set. Items is filled by the caller once the
// window has been queried.
type Page struct {
	Number    int
	Items     any
	paginator *Paginator
}

// Offset is the index of the first item on the page.
func (pg *Page) Offset() int {
	return (pg.Number - 1) * pg.paginator.PerPage
}

// Limit is the maximum number of items on the page.
func (pg *Page) Limit() int {
	return pg.paginator.PerPage
}

// Len is the number of items the page holds.
func (pg *Page) Len() int {
	remaining := pg.paginator.Total - int64(pg.Offset())
	if remaining <= 0 {
		return 0
	}
	if remaining > int64(pg.paginator.PerPage) {
		return pg.paginator.PerPage
	}
	return int(remaining)
}

func (pg *Page) NumPages() int     { return pg.paginator.NumPages() }
func (pg *Page) Total() int64      { return pg.paginator.Total }
func (pg *Page) HasNext() bool     { return pg.Number < pg.paginator.NumPages() }
func (pg *Page) HasPrevious() bool { return pg.Number > 1 }
func (pg *Page) HasOtherPages() bool {
	return pg.HasNext() || pg.HasPrevious()
}
func (pg *Page) NextNumber() int     { return pg.Number + 1 }
func (pg *Page) PreviousNumber() int { return pg.Number - 1 }

// PageRange lists every page number, for rendering page links.
func (pg *Page) PageRange() []int {
	n := pg.paginator.NumPages()
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
