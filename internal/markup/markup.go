// Package markup converts raw model text into the display markup shown in
// the chat, and back into markdown for presentation layers that are not
// browsers.
package markup

import (
	"regexp"
	"strings"
)

var (
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	itemPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// Format applies the chat's three substitutions, in order:
// **x** to <b>x</b>, *x* to <li>x</li>, and newlines to <br>.
// Matching is non-greedy and does not cross line breaks.
func Format(text string) string {
	text = boldPattern.ReplaceAllString(text, "<b>$1</b>")
	text = itemPattern.ReplaceAllString(text, "<li>$1</li>")
	return strings.ReplaceAll(text, "\n", "<br>")
}

var toMarkdown = strings.NewReplacer(
	"<b>", "**",
	"</b>", "**",
	"<li>", "\n- ",
	"</li>", "\n",
	"<br>", "\n",
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// ToMarkdown turns display markup into markdown. List items are placed on
// their own line, the way a browser lays out <li>.
func ToMarkdown(markup string) string {
	md := toMarkdown.Replace(markup)
	md = blankRuns.ReplaceAllString(md, "\n\n")
	return strings.Trim(md, "\n")
}

// Plain strips all display markup, keeping line breaks
func Plain(markup string) string {
	return strings.NewReplacer(
		"<b>", "",
		"</b>", "",
		"<li>", "• ",
		"</li>", "",
		"<br>", "\n",
	).Replace(markup)
}
