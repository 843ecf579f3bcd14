package render

import (
	"sort"
	"sync"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the chat screen
type TUITheme struct {
	Name        string
	Description string

	// MarkdownStyle is the glamour style that goes well with the palette
	MarkdownStyle string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// User and Model color the speaker labels
	User  lipgloss.Color
	Model lipgloss.Color

	Accent  lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultTUITheme is used when the configured theme is unknown
const DefaultTUITheme = "tokyonight"

var tuiThemes = map[string]TUITheme{
	"tokyonight": {
		Name:          "tokyonight",
		Description:   "Tokyo Night, dark with blue accents",
		MarkdownStyle: styles.TokyoNightStyle,
		Background:    lipgloss.Color("#1a1b26"),
		Surface:       lipgloss.Color("#24283b"),
		Border:        lipgloss.Color("#414868"),
		User:          lipgloss.Color("#9ece6a"),
		Model:         lipgloss.Color("#7aa2f7"),
		Accent:        lipgloss.Color("#bb9af7"),
		Warning:       lipgloss.Color("#e0af68"),
		Error:         lipgloss.Color("#f7768e"),
		Text:          lipgloss.Color("#c0caf5"),
		TextDim:       lipgloss.Color("#565f89"),
	},
	"dracula": {
		Name:          "dracula",
		Description:   "Dracula, dark with vibrant colors",
		MarkdownStyle: styles.DraculaStyle,
		Background:    lipgloss.Color("#282a36"),
		Surface:       lipgloss.Color("#44475a"),
		Border:        lipgloss.Color("#6272a4"),
		User:          lipgloss.Color("#50fa7b"),
		Model:         lipgloss.Color("#8be9fd"),
		Accent:        lipgloss.Color("#ff79c6"),
		Warning:       lipgloss.Color("#f1fa8c"),
		Error:         lipgloss.Color("#ff5555"),
		Text:          lipgloss.Color("#f8f8f2"),
		TextDim:       lipgloss.Color("#6272a4"),
	},
	"cookies": {
		Name:          "cookies",
		Description:   "Warm browns for the cookie shop",
		MarkdownStyle: styles.DarkStyle,
		Background:    lipgloss.Color("#1f1611"),
		Surface:       lipgloss.Color("#2e2119"),
		Border:        lipgloss.Color("#5c4331"),
		User:          lipgloss.Color("#e9c46a"),
		Model:         lipgloss.Color("#f4a261"),
		Accent:        lipgloss.Color("#e76f51"),
		Warning:       lipgloss.Color("#ffd166"),
		Error:         lipgloss.Color("#ef476f"),
		Text:          lipgloss.Color("#f1e3d3"),
		TextDim:       lipgloss.Color("#8d7664"),
	},
	"light": {
		Name:          "light",
		Description:   "Light background",
		MarkdownStyle: styles.LightStyle,
		Background:    lipgloss.Color("#fafafa"),
		Surface:       lipgloss.Color("#eeeeee"),
		Border:        lipgloss.Color("#bdbdbd"),
		User:          lipgloss.Color("#2e7d32"),
		Model:         lipgloss.Color("#1565c0"),
		Accent:        lipgloss.Color("#6a1b9a"),
		Warning:       lipgloss.Color("#ef6c00"),
		Error:         lipgloss.Color("#c62828"),
		Text:          lipgloss.Color("#212121"),
		TextDim:       lipgloss.Color("#757575"),
	},
}

var (
	tuiThemeMu      sync.RWMutex
	currentTUITheme = tuiThemes[DefaultTUITheme]
)

// GetTUITheme returns the active TUI theme
func GetTUITheme() TUITheme {
	tuiThemeMu.RLock()
	defer tuiThemeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme activates the theme called name. It returns false and keeps
// the current theme when name is unknown.
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	tuiThemeMu.Lock()
	currentTUITheme = theme
	tuiThemeMu.Unlock()
	return true
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	theme, ok := tuiThemes[name]
	return theme, ok
}

// TUIThemeNames returns the theme names, sorted
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
