// Package pagination splits a list section into numbered pages.
package pagination

// DefaultPageSize is used when a non-positive size is given.
const DefaultPageSize = 6

// Page describes one page of a list of Count items. Start and End are slice
// bounds into the full list.
type Page struct {
	Number       int   `json:"number"`
	Size         int   `json:"size"`
	Count        int   `json:"count"`
	TotalPages   int   `json:"totalPages"`
	Start        int   `json:"start"`
	End          int   `json:"end"`
	HasPrev      bool  `json:"hasPrev"`
	HasNext      bool  `json:"hasNext"`
	ShowControls bool  `json:"showControls"`
	Pages        []int `json:"pages,omitempty"`
}

// New computes page number of count items split by size. The number is
// clamped into [1, TotalPages].
func New(count, size, number int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if count < 0 {
		count = 0
	}
	total := TotalPages(count, size)

	number = Clamp(number, total)
	start := (number - 1) * size
	if start > count {
		start = count
	}
	end := min(start+size, count)

	page := Page{
		Number:       number,
		Size:         size,
		Count:        count,
		TotalPages:   total,
		Start:        start,
		End:          end,
		HasPrev:      number > 1,
		HasNext:      number < total,
		ShowControls: total > 1,
	}
	if page.ShowControls {
		page.Pages = make([]int, total)
		for i := range page.Pages {
			page.Pages[i] = i + 1
		}
	}
	return page
}

// TotalPages returns ceil(count/size).
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Clamp keeps number inside [1, total]; an empty list still has page 1.
func Clamp(number, total int) int {
	if number > total {
		number = total
	}
	if number < 1 {
		number = 1
	}
	return number
}

// Next returns the page after p, staying on the last page.
func (p Page) Next() int { return Clamp(p.Number+1, p.TotalPages) }

// Prev returns the page before p, staying on the first page.
func (p Page) Prev() int { return Clamp(p.Number-1, p.TotalPages) }

// Slice returns the items on page p.
func Slice[T any](items []T, p Page) []T {
	start, end := p.Start, p.End
	if end > len(items) {
		end = len(items)
	}
	if start > end {
		start = end
	}
	return items[start:end]
}
