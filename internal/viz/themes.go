package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the parts of the scene that have no colour of their own.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Sphere    lipgloss.Color
	Ground    lipgloss.Color
	Text      lipgloss.Color
}

var (
	ThemeDusk = Theme{
		Name:      "dusk",
		Primary:   lipgloss.Color("#7C83FD"),
		Secondary: lipgloss.Color("#96BAFF"),
		Sphere:    lipgloss.Color("#ffffff"),
		Ground:    lipgloss.Color("#3b3f7a"),
		Text:      lipgloss.Color("#e0e4ff"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"), // Green phosphor
		Secondary: lipgloss.Color("#00cc00"),
		Sphere:    lipgloss.Color("#88ff88"),
		Ground:    lipgloss.Color("#005500"),
		Text:      lipgloss.Color("#00ff00"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"), // Coral
		Secondary: lipgloss.Color("#feca57"),
		Sphere:    lipgloss.Color("#ff9ff3"),
		Ground:    lipgloss.Color("#5a3a5c"),
		Text:      lipgloss.Color("#fff5f5"),
	}

	Themes = []Theme{
		ThemeDusk,
		ThemeRetroGreen,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
