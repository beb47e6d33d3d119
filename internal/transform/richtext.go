package transform

import "strings"

// RichText flattens a text field. Plain strings pass through; Strapi blocks
// (a list of nodes with children and text leaves) become paragraphs joined by
// blank lines. Anything else yields "".
func RichText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		paragraphs := make([]string, 0, len(v))
		for _, block := range v {
			var b strings.Builder
			collectText(&b, block)
			if text := strings.TrimSpace(b.String()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		return strings.Join(paragraphs, "\n\n")
	default:
		return ""
	}
}

func collectText(b *strings.Builder, node any) {
	obj, ok := node.(map[string]any)
	if !ok {
		return
	}
	if text, ok := obj["text"].(string); ok {
		b.WriteString(text)
	}
	children, _ := obj["children"].([]any)
	for _, child := range children {
		collectText(b, child)
	}
}
