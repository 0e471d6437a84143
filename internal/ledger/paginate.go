package ledger

import (
	"slices"

	"finanzy/internal/core"
)

// DefaultPageSize is used when the requested page size is not positive.
const DefaultPageSize = 10

// PageSizeOptions are the sizes offered by the page-size menu.
var PageSizeOptions = []int{5, 10, 15, 20}

// Page is one window of a date-ordered list.
type Page struct {
	Items      []core.Transaction
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	// StartIndex and EndIndex delimit Items in the sorted list, end exclusive.
	StartIndex int
	EndIndex   int
}

// SortByDateDesc returns a copy of items ordered newest first. Transactions
// sharing a date keep their relative order.
func SortByDateDesc(items []core.Transaction) []core.Transaction {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return sorted
}

// Paginate sorts items by date descending and returns the requested page.
// A page below 1 is treated as 1; a page past the last one is empty.
func Paginate(items []core.Transaction, pageSize, page int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	sorted := SortByDateDesc(items)
	return Page{
		Items:      sorted[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
		StartIndex: start,
		EndIndex:   end,
	}
}

// Pages lists the page numbers 1..TotalPages.
func (p Page) Pages() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func (p Page) HasPrev() bool { return p.Page > 1 }

func (p Page) HasNext() bool { return p.Page < p.TotalPages }

func (p Page) PrevPage() int { return max(p.Page-1, 1) }

func (p Page) NextPage() int { return p.Page + 1 }

// IsValidPageSize reports whether n is one of PageSizeOptions.
func IsValidPageSize(n int) bool {
	return slices.Contains(PageSizeOptions, n)
}
