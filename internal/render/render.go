package render

import (
	"strings"

	"github.com/diogo/cookieschat/internal/markup"
)

// Markdown renders markdown content for terminal display.
// Uses a pooled renderer for better performance and thread safety.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Reply renders a model message, which is stored as chat markup
func Reply(text string, opts Options) (string, error) {
	out, err := Markdown(markup.ToMarkdown(text), opts)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// ReplyOrPlain renders text like Reply and falls back to the plain text
// when the renderer cannot be built
func ReplyOrPlain(text string, opts Options) string {
	out, err := Reply(text, opts)
	if err != nil {
		return markup.Plain(text)
	}
	return out
}
