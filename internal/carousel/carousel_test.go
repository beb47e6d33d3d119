package carousel_test

import (
	"testing"

	"github.com/goliatone/go-sitecontent/internal/carousel"
)

func TestNextAndPrevAreCircular(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for start := 0; start < n; start++ {
			c := carousel.Carousel{Index: start}
			c.Next(n)
			c.Prev(n)
			if c.Index != start {
				t.Fatalf("n=%d start=%d: prev(next(i)) = %d", n, start, c.Index)
			}
		}
	}

	c := carousel.Carousel{Index: 2}
	if got := c.Next(3); got != 0 {
		t.Fatalf("expected wrap to 0, got %d", got)
	}
	if got := c.Prev(3); got != 2 {
		t.Fatalf("expected wrap to 2, got %d", got)
	}
}

func TestClampAfterListShrinks(t *testing.T) {
	c := carousel.Carousel{Index: 5}
	if got := c.Clamp(3); got != 2 {
		t.Fatalf("expected clamp to last slide, got %d", got)
	}
	c.Index = 5
	if got := c.Next(3); got != 0 {
		t.Fatalf("expected next from clamped index to wrap, got %d", got)
	}
	if got := c.Clamp(0); got != 0 {
		t.Fatalf("expected zero for empty carousel, got %d", got)
	}
}

func TestGoToWrapsAnyIndex(t *testing.T) {
	var c carousel.Carousel
	cases := map[int]int{0: 0, 4: 1, -1: 2, 7: 1}
	for in, want := range cases {
		if got := c.GoTo(in, 3); got != want {
			t.Fatalf("GoTo(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestTeamSlidesAndWindow(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e", "f", "g"}
	if got := carousel.Slides(len(members), 3); got != 3 {
		t.Fatalf("expected 3 slides, got %d", got)
	}
	if got := carousel.Slides(0, 3); got != 1 {
		t.Fatalf("expected one slide for an empty team, got %d", got)
	}
	last := carousel.Window(members, 2, 3)
	if len(last) != 1 || last[0] != "g" {
		t.Fatalf("unexpected last window %v", last)
	}
	if got := carousel.Window(members, 5, 3); len(got) != 0 {
		t.Fatalf("expected empty window past the end, got %v", got)
	}
}
