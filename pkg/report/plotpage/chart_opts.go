package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOpts builds themed go-echarts options so individual charts
// stay consistent with the page around them.
type ChartOpts struct {
	theme   Theme
	config  ThemeConfig
	palette ChartPalette
}

// NewChartOpts creates chart options for a theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{
		theme:   theme,
		config:  GetThemeConfig(theme),
		palette: GetChartPalette(theme),
	}
}

// DefaultChartOpts creates chart options for the light theme.
func DefaultChartOpts() *ChartOpts {
	return NewChartOpts(ThemeLight)
}

// Theme returns the theme these options were built for.
func (co *ChartOpts) Theme() Theme {
	return co.theme
}

// Palette returns the series colors for the current theme.
func (co *ChartOpts) Palette() ChartPalette {
	return co.palette
}

// Init returns themed initialization options.
func (co *ChartOpts) Init(width, height string) opts.Initialization {
	return opts.Initialization{
		Width:           width,
		Height:          height,
		BackgroundColor: co.config.ChartBackground,
		Theme:           co.config.EChartsTheme,
	}
}

// Title returns themed title options.
func (co *ChartOpts) Title(title, subtitle string) opts.Title {
	return opts.Title{
		Title:    title,
		Subtitle: subtitle,
		TitleStyle: &opts.TextStyle{
			Color: co.config.TextPrimary,
		},
		SubtitleStyle: &opts.TextStyle{
			Color: co.config.TextMuted,
		},
	}
}

// Legend returns themed legend options.
func (co *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show: opts.Bool(true),
		TextStyle: &opts.TextStyle{
			Color: co.config.ChartText,
		},
	}
}

// XAxis returns themed X axis options.
func (co *ChartOpts) XAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name: name,
		AxisLabel: &opts.AxisLabel{
			Color: co.config.ChartTextMuted,
		},
		AxisLine: &opts.AxisLine{
			LineStyle: &opts.LineStyle{
				Color: co.config.ChartAxis,
			},
		},
		SplitLine: &opts.SplitLine{
			Show: opts.Bool(false),
		},
	}
}

// YAxis returns themed Y axis options.
func (co *ChartOpts) YAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name: name,
		AxisLabel: &opts.AxisLabel{
			Color: co.config.ChartTextMuted,
		},
		AxisLine: &opts.AxisLine{
			LineStyle: &opts.LineStyle{
				Color: co.config.ChartAxis,
			},
		},
		SplitLine: &opts.SplitLine{
			Show: opts.Bool(true),
			LineStyle: &opts.LineStyle{
				Color: co.config.ChartGrid,
			},
		},
	}
}

// Grid returns grid options with room for rotated axis labels.
func (co *ChartOpts) Grid() opts.Grid {
	return opts.Grid{
		ContainLabel: opts.Bool(true),
		Bottom:       "15%",
	}
}

// DataZoom returns slider and inside zoom options for dense charts.
func (co *ChartOpts) DataZoom() []opts.DataZoom {
	return []opts.DataZoom{
		{
			Type:  "slider",
			Start: 0,
			End:   100,
		},
		{
			Type:  "inside",
			Start: 0,
			End:   100,
		},
	}
}

// Tooltip returns themed tooltip options. Trigger is "axis" or "item".
func (co *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{
		Show:    opts.Bool(true),
		Trigger: trigger,
	}
}

// TextColor returns the primary text color for manual styling.
func (co *ChartOpts) TextColor() string {
	return co.config.ChartText
}

// TextMutedColor returns the muted text color for manual styling.
func (co *ChartOpts) TextMutedColor() string {
	return co.config.ChartTextMuted
}

// GridColor returns the grid line color for manual styling.
func (co *ChartOpts) GridColor() string {
	return co.config.ChartGrid
}

// AxisColor returns the axis line color for manual styling.
func (co *ChartOpts) AxisColor() string {
	return co.config.ChartAxis
}
