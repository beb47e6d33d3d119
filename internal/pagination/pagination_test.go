package pagination_test

import (
	"testing"

	"github.com/goliatone/go-sitecontent/internal/pagination"
)

func TestThirteenServicesSplitIntoThreePages(t *testing.T) {
	items := make([]int, 13)
	for i := range items {
		items[i] = i + 1
	}

	page := pagination.New(len(items), 6, 3)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}
	got := pagination.Slice(items, page)
	if len(got) != 1 || got[0] != 13 {
		t.Fatalf("expected only item 13 on page 3, got %v", got)
	}
	if page.HasNext || !page.HasPrev || !page.ShowControls {
		t.Fatalf("unexpected navigation flags %+v", page)
	}
	if len(page.Pages) != 3 {
		t.Fatalf("expected page links 1..3, got %v", page.Pages)
	}
}

func TestPageNumberIsClamped(t *testing.T) {
	cases := []struct {
		name   string
		count  int
		number int
		want   int
	}{
		{"below range", 13, 0, 1},
		{"negative", 13, -4, 1},
		{"above range", 13, 9, 3},
		{"empty list", 0, 5, 1},
		{"in range", 13, 2, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pagination.New(tc.count, 6, tc.number).Number; got != tc.want {
				t.Fatalf("expected page %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSinglePageHidesControls(t *testing.T) {
	page := pagination.New(6, 6, 1)
	if page.ShowControls || page.Pages != nil {
		t.Fatalf("expected no controls for a single page, got %+v", page)
	}
	empty := pagination.New(0, 6, 1)
	if empty.ShowControls || empty.TotalPages != 0 || empty.Start != 0 || empty.End != 0 {
		t.Fatalf("unexpected empty page %+v", empty)
	}
	if got := pagination.Slice([]string{}, empty); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestNextAndPrevStayInRange(t *testing.T) {
	last := pagination.New(13, 6, 3)
	if last.Next() != 3 || last.Prev() != 2 {
		t.Fatalf("unexpected neighbours of last page: next %d prev %d", last.Next(), last.Prev())
	}
	first := pagination.New(13, 6, 1)
	if first.Prev() != 1 || first.Next() != 2 {
		t.Fatalf("unexpected neighbours of first page: next %d prev %d", first.Next(), first.Prev())
	}
}
