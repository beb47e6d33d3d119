// Package carousel holds the circular index arithmetic behind the team and
// testimonial sliders.
package carousel

// Carousel tracks the visible slide. The slide count is passed at each
// transition because the underlying list can change between renders.
type Carousel struct {
	Index int `json:"index"`
}

// Next advances circularly: (i+1) mod n.
func (c *Carousel) Next(n int) int {
	if n <= 0 {
		c.Index = 0
		return 0
	}
	c.Index = (c.Clamp(n) + 1) % n
	return c.Index
}

// Prev steps back circularly: (i-1+n) mod n.
func (c *Carousel) Prev(n int) int {
	if n <= 0 {
		c.Index = 0
		return 0
	}
	c.Index = (c.Clamp(n) - 1 + n) % n
	return c.Index
}

// GoTo jumps to slide i, wrapping any integer into range.
func (c *Carousel) GoTo(i, n int) int {
	if n <= 0 {
		c.Index = 0
		return 0
	}
	c.Index = ((i % n) + n) % n
	return c.Index
}

// Clamp pulls an index left past the end of a shrunken list back to the last
// slide and returns it.
func (c *Carousel) Clamp(n int) int {
	switch {
	case n <= 0 || c.Index < 0:
		c.Index = 0
	case c.Index >= n:
		c.Index = n - 1
	}
	return c.Index
}

// Slides returns how many slides count items need at perSlide per slide. An
// empty list still renders one slide.
func Slides(count, perSlide int) int {
	if perSlide <= 0 {
		perSlide = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + perSlide - 1) / perSlide
}

// Window returns the items shown on slide.
func Window[T any](items []T, slide, perSlide int) []T {
	if perSlide <= 0 {
		perSlide = 1
	}
	start := slide * perSlide
	if slide < 0 || start >= len(items) {
		return []T{}
	}
	return items[start:min(start+perSlide, len(items))]
}
