package render

import (
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names shipped with glamour
const (
	StyleDark  = styles.DarkStyle
	StyleLight = styles.LightStyle
	StyleNoTTY = styles.NoTTYStyle
	StyleAuto  = styles.AutoStyle
)

// IsBuiltinStyle returns true if style names one of glamour's standard styles
func IsBuiltinStyle(style string) bool {
	if style == StyleAuto {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// StyleNames returns the standard style names, sorted
func StyleNames() []string {
	names := make([]string, 0, len(styles.DefaultStyles)+1)
	for name := range styles.DefaultStyles {
		names = append(names, name)
	}
	names = append(names, StyleAuto)
	sort.Strings(names)
	return names
}

// styleOption selects a standard style by name or loads a style file
func styleOption(style string) glamour.TermRendererOption {
	switch {
	case style == "":
		return glamour.WithStandardStyle(StyleDark)
	case style == StyleAuto:
		return glamour.WithAutoStyle()
	case IsBuiltinStyle(style):
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(style)
	}
}
