package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/diogo/cookieschat/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().
		WithWidth(100).
		WithStyle("light").
		WithEmoji(false).
		WithPreserveNewLines(false)

	if opts.Width != 100 || opts.Style != "light" || opts.EnableEmoji || opts.PreserveNewLines {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	md := config.MarkdownConfig{Style: "dracula", EnableEmoji: false, PreserveNewLines: true}

	opts := OptionsFromConfig(md, 60)
	if opts.Style != "dracula" || opts.Width != 60 || opts.EnableEmoji {
		t.Errorf("unexpected options: %+v", opts)
	}

	opts = OptionsFromConfig(config.MarkdownConfig{}, 0)
	if opts.Style != StyleDark || opts.Width != 80 {
		t.Errorf("empty config should keep defaults: %+v", opts)
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nSome **bold** text", DefaultOptions().WithStyle(StyleNoTTY))
	if err != nil {
		t.Fatalf("Markdown() error: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Errorf("output missing content: %q", out)
	}
}

func TestReply(t *testing.T) {
	out, err := Reply("<b>Galletas</b><br><li>chocolate</li>", DefaultOptions().WithStyle(StyleNoTTY))
	if err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	if strings.Contains(out, "<b>") || strings.Contains(out, "<li>") {
		t.Errorf("markup leaked into output: %q", out)
	}
	if !strings.Contains(out, "Galletas") || !strings.Contains(out, "chocolate") {
		t.Errorf("output missing content: %q", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("trailing newlines should be trimmed")
	}
}

func TestReplyOrPlain_BadStyleFile(t *testing.T) {
	ClearCache()
	defer ClearCache()

	out := ReplyOrPlain("<b>hola</b>", DefaultOptions().WithStyle("/does/not/exist.json"))
	if out != "hola" {
		t.Errorf("ReplyOrPlain() = %q, want plain text", out)
	}
}

func TestIsBuiltinStyle(t *testing.T) {
	for _, name := range []string{"dark", "light", "notty", "dracula", "auto"} {
		if !IsBuiltinStyle(name) {
			t.Errorf("IsBuiltinStyle(%q) = false", name)
		}
	}
	if IsBuiltinStyle("/tmp/style.json") {
		t.Error("paths are not builtin styles")
	}

	names := StyleNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("StyleNames() not sorted: %v", names)
		}
	}
}

func TestCacheKey(t *testing.T) {
	base := DefaultOptions()
	if cacheKey(base) == cacheKey(base.WithWidth(100)) {
		t.Error("Different widths should produce different keys")
	}
	if cacheKey(base) == cacheKey(base.WithStyle("light")) {
		t.Error("Different styles should produce different keys")
	}
	if cacheKey(base) != cacheKey(DefaultOptions()) {
		t.Error("Same options should produce same key")
	}
}

func TestPoolConcurrentRender(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions().WithStyle(StyleNoTTY)
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Reply("<b>x</b>", opts); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render error: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", CacheSize())
	}
}

func TestTUIThemes(t *testing.T) {
	defer SetTUITheme(DefaultTUITheme)

	if GetTUITheme().Name != DefaultTUITheme {
		t.Errorf("default theme = %s", GetTUITheme().Name)
	}

	for _, name := range TUIThemeNames() {
		theme, ok := GetTUIThemeByName(name)
		if !ok {
			t.Fatalf("theme %s not found", name)
		}
		if theme.Name != name || theme.Description == "" || theme.User == "" || theme.Model == "" {
			t.Errorf("theme %s incomplete: %+v", name, theme)
		}
		if !IsBuiltinStyle(theme.MarkdownStyle) {
			t.Errorf("theme %s pairs with unknown markdown style %q", name, theme.MarkdownStyle)
		}
	}

	if !SetTUITheme("dracula") || GetTUITheme().Name != "dracula" {
		t.Error("SetTUITheme(dracula) did not apply")
	}
	if SetTUITheme("nope") {
		t.Error("SetTUITheme should reject unknown names")
	}
	if GetTUITheme().Name != "dracula" {
		t.Error("unknown theme must keep the current one")
	}
}
