package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Renderer implements interfaces.MarkdownRenderer. The goldmark engine is
// built once and is safe for concurrent use.
type Renderer struct {
	options interfaces.RenderOptions
	engine  goldmark.Markdown
}

var _ interfaces.MarkdownRenderer = (*Renderer)(nil)

// DefaultOptions renders GFM without passing raw HTML through. Descriptions
// come from CMS editors, so safe mode is on.
func DefaultOptions() interfaces.RenderOptions {
	return interfaces.RenderOptions{SafeMode: true}
}

// NewRenderer builds a renderer for opts.
func NewRenderer(opts interfaces.RenderOptions) *Renderer {
	return &Renderer{
		options: opts,
		engine:  newEngine(opts),
	}
}

// Options returns the options the renderer was built with.
func (r *Renderer) Options() interfaces.RenderOptions {
	return r.options
}

// Render converts markdown into an HTML fragment.
func (r *Renderer) Render(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderString is Render for string fields.
func (r *Renderer) RenderString(markdown string) (string, error) {
	out, err := r.Render([]byte(markdown))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func newEngine(opts interfaces.RenderOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"typographer":   extension.Typographer,
	"definition":    extension.DefinitionList,
}

// collectExtensions maps names onto goldmark extenders. Unknown names are
// ignored; no names means GFM plus linkify.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}
