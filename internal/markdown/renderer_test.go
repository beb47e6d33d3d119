package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

func TestRendererRendersDescriptions(t *testing.T) {
	r := NewRenderer(DefaultOptions())

	out, err := r.RenderString("## Corporate Law\n\nWe advise **founders** and boards.")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<h2 id="corporate-law">Corporate Law</h2>`) {
		t.Fatalf("expected heading with id, got %q", out)
	}
	if !strings.Contains(out, "<strong>founders</strong>") {
		t.Fatalf("expected emphasis, got %q", out)
	}
}

func TestSafeModeDropsRawHTML(t *testing.T) {
	src := "Hello <script>alert(1)</script>"

	safe, err := NewRenderer(DefaultOptions()).RenderString(src)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(safe, "<script>") {
		t.Fatalf("expected raw HTML to be omitted in safe mode, got %q", safe)
	}

	unsafe, err := NewRenderer(interfaces.RenderOptions{}).RenderString(src)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(unsafe, "<script>") {
		t.Fatalf("expected raw HTML to pass through, got %q", unsafe)
	}
}

func TestExtensionsAndHardWraps(t *testing.T) {
	r := NewRenderer(interfaces.RenderOptions{
		Extensions: []string{"Strikethrough", "strikethrough", "unknown"},
		HardWraps:  true,
		SafeMode:   true,
	})
	out, err := r.RenderString("~~old~~\nnew")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<del>old</del><br>") {
		t.Fatalf("expected strikethrough and hard wrap, got %q", out)
	}
	if got := len(collectExtensions([]string{"table", "tables", "", "nope"})); got != 2 {
		t.Fatalf("expected duplicate aliases to be kept per name, got %d extenders", got)
	}
}
