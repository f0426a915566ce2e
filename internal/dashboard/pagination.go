package dashboard

import (
	"sync"

	"github.com/shashiranjanraj/laundry/pkg/collection"
)

// ItemsPerPage is fixed for every dashboard table.
const ItemsPerPage = 5

// Pagination is a 1-indexed page cursor. It does not know the list length;
// a page past the end simply shows nothing.
type Pagination struct {
	mu   sync.Mutex
	page int
}

func NewPagination() *Pagination { return &Pagination{page: 1} }

func (p *Pagination) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page == 0 {
		return 1
	}
	return p.page
}

// SetPage stores page as given.
func (p *Pagination) SetPage(page int) {
	p.mu.Lock()
	p.page = page
	p.mu.Unlock()
}

// PageCount is ceil(total/ItemsPerPage).
func PageCount(total int) int { return collection.PageCount(total, ItemsPerPage) }

// PageLinks lists 1..PageCount(total); empty when total is 0.
func PageLinks(total int) []int {
	n := PageCount(total)
	links := make([]int, n)
	for i := range links {
		links[i] = i + 1
	}
	return links
}

// Visible is the slice of items on p's current page.
func Visible[T any](p *Pagination, items []T) []T {
	return collection.Paginate(items, p.Current(), ItemsPerPage)
}
