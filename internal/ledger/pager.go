package ledger

import "github.com/theirongolddev/budgie/internal/model"

// Direction selects which way Paginate moves.
type Direction int

const (
	Prev Direction = iota
	Next
)

// Pager is a 1-based page cursor over a sequence of fixed-size windows.
type Pager struct {
	Page int
	Size int
}

// NewPager returns a pager on page 1. Sizes below 1 become 1.
func NewPager(size int) Pager {
	if size < 1 {
		size = 1
	}
	return Pager{Page: 1, Size: size}
}

// PageCount returns ceil(n/size), and never less than 1.
func (p Pager) PageCount(n int) int {
	if n <= 0 || p.Size <= 0 {
		return 1
	}
	return (n + p.Size - 1) / p.Size
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a page follows the current one for n entries.
func (p Pager) HasNext(n int) bool { return p.Page < p.PageCount(n) }

// Move returns the pager advanced one page in dir, bounded by n entries.
func (p Pager) Move(dir Direction, n int) Pager {
	switch dir {
	case Next:
		if p.HasNext(n) {
			p.Page++
		}
	case Prev:
		if p.HasPrev() {
			p.Page--
		}
	}
	return p
}

// Clamp keeps Page inside [1, PageCount(n)].
func (p Pager) Clamp(n int) Pager {
	if p.Page < 1 {
		p.Page = 1
	}
	if last := p.PageCount(n); p.Page > last {
		p.Page = last
	}
	return p
}

// Bounds returns the half-open index range of the current page.
func (p Pager) Bounds(n int) (start, end int) {
	p = p.Clamp(n)
	start = (p.Page - 1) * p.Size
	end = start + p.Size
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}

// Window returns the entries visible on the current page.
func (p Pager) Window(entries []model.Expenditure) []model.Expenditure {
	start, end := p.Bounds(len(entries))
	return entries[start:end]
}
