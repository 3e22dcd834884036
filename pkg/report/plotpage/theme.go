package plotpage

// Theme selects a color theme for rendered pages.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds the styling values for one theme.
type ThemeConfig struct {
	Background   string
	Surface      string
	SurfaceHover string
	Border       string

	TextPrimary   string
	TextSecondary string
	TextMuted     string

	Accent string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// ECharts theme name, empty for the built-in default.
	EChartsTheme string
}

// ChartPalette holds series colors for charts.
type ChartPalette struct {
	Primary  []string
	Semantic struct {
		Good    string
		Warning string
		Bad     string
		Severe  string
	}
}

// GetThemeConfig returns the configuration for a theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// GetChartPalette returns the chart colors for a theme.
func GetChartPalette(theme Theme) ChartPalette {
	if theme == ThemeDark {
		return darkChartPalette
	}

	return lightChartPalette
}

var lightTheme = ThemeConfig{
	Background:   "#fafaf9",
	Surface:      "#ffffff",
	SurfaceHover: "#f5f5f4",
	Border:       "#e7e5e4",

	TextPrimary:   "#1c1917",
	TextSecondary: "#44403c",
	TextMuted:     "#78716c",

	Accent: "#a16207",

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4",
	ChartAxis:       "#a8a29e",
	ChartText:       "#44403c",
	ChartTextMuted:  "#78716c",

	EChartsTheme: "",
}

var darkTheme = ThemeConfig{
	Background:   "#0c0a09",
	Surface:      "#1c1917",
	SurfaceHover: "#292524",
	Border:       "#44403c",

	TextPrimary:   "#fafaf9",
	TextSecondary: "#d6d3d1",
	TextMuted:     "#a8a29e",

	Accent: "#d97706",

	ChartBackground: "transparent",
	ChartGrid:       "#44403c",
	ChartAxis:       "#57534e",
	ChartText:       "#d6d3d1",
	ChartTextMuted:  "#a8a29e",

	EChartsTheme: "",
}

var lightChartPalette = ChartPalette{
	Primary: []string{
		"#a16207", // amber-700.
		"#0369a1", // sky-700.
		"#4d7c0f", // lime-700.
		"#7c3aed", // violet-600.
		"#be185d", // pink-700.
		"#0891b2", // cyan-600.
	},
	Semantic: struct {
		Good    string
		Warning string
		Bad     string
		Severe  string
	}{
		Good:    "#16a34a",
		Warning: "#ca8a04",
		Bad:     "#dc2626",
		Severe:  "#7f1d1d",
	},
}

var darkChartPalette = ChartPalette{
	Primary: []string{
		"#fbbf24", // amber-400.
		"#38bdf8", // sky-400.
		"#a3e635", // lime-400.
		"#a78bfa", // violet-400.
		"#f472b6", // pink-400.
		"#22d3ee", // cyan-400.
	},
	Semantic: struct {
		Good    string
		Warning string
		Bad     string
		Severe  string
	}{
		Good:    "#4ade80",
		Warning: "#eab308",
		Bad:     "#ef4444",
		Severe:  "#991b1b",
	},
}
