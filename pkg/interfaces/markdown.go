package interfaces

// MarkdownRenderer converts CMS rich text into HTML fragments for section views.
type MarkdownRenderer interface {
	Render(markdown []byte) ([]byte, error)
}

// RenderOptions toggles goldmark behaviour for description fields.
type RenderOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}
