package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/cognit/pkg/report/plotpage"
)

// plotTopFunctions caps the bar chart; everything past it is readable
// only through the data zoom anyway.
const plotTopFunctions = 30

// WritePlot renders the report as a standalone HTML page with
// interactive charts.
func (r *Report) WritePlot(w io.Writer, theme plotpage.Theme) error {
	co := plotpage.NewChartOpts(theme)

	page := plotpage.NewPage(
		"Complexity Report",
		fmt.Sprintf("Cognitive complexity across %s.", r.Root),
	).WithTheme(theme)

	top := r.TopFunctions(plotTopFunctions)
	if len(top) == 0 {
		page.Add(plotpage.Section{
			Title:    "Hot Functions",
			Subtitle: msgNoFunctions,
		})

		return renderPage(page, w)
	}

	page.Add(
		plotpage.Section{
			Title:    "Hot Functions",
			Subtitle: fmt.Sprintf("Top %d functions by cognitive complexity.", len(top)),
			Chart:    hotFunctionsBar(co, top),
			Hint: &plotpage.Hint{
				Title: "Reading",
				Items: []string{
					"Each bar is one function, colored by its risk bucket.",
					"Scores combine flat increments with nesting penalties, so tall bars usually mean deep nesting.",
				},
			},
		},
		plotpage.Section{
			Title:    "Risk Distribution",
			Subtitle: "Scored functions per risk bucket.",
			Chart:    riskPie(co, r.Summary.Risk),
		},
	)

	return renderPage(page, w)
}

func hotFunctionsBar(co *plotpage.ChartOpts, functions []Function) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init("100%", "500px")),
		charts.WithTooltipOpts(co.Tooltip("axis")),
		charts.WithGridOpts(co.Grid()),
		charts.WithDataZoomOpts(co.DataZoom()...),
		charts.WithXAxisOpts(co.XAxis("")),
		charts.WithYAxisOpts(co.YAxis("Cognitive complexity")),
	)

	labels := make([]string, 0, len(functions))
	data := make([]opts.BarData, 0, len(functions))

	for _, fn := range functions {
		labels = append(labels, fn.Name)
		data = append(data, opts.BarData{
			Value:     fn.Complexity,
			ItemStyle: &opts.ItemStyle{Color: riskHex(co, fn.Risk)},
		})
	}

	bar.SetXAxis(labels)
	bar.AddSeries("complexity", data)

	return bar
}

func riskPie(co *plotpage.ChartOpts, breakdown RiskBreakdown) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init("100%", "500px")),
		charts.WithTooltipOpts(co.Tooltip("item")),
		charts.WithLegendOpts(co.Legend()),
	)

	data := make([]opts.PieData, 0, 4)

	for _, risk := range []Risk{RiskLow, RiskModerate, RiskHigh, RiskSevere} {
		count := breakdown.Count(risk)
		if count == 0 {
			continue
		}

		data = append(data, opts.PieData{
			Name:      string(risk),
			Value:     count,
			ItemStyle: &opts.ItemStyle{Color: riskHex(co, risk)},
		})
	}

	pie.AddSeries("functions", data)
	pie.SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {c} ({d}%)",
			Color:     co.TextColor(),
		}),
		charts.WithPieChartOpts(opts.PieChart{Radius: "60%"}),
	)

	return pie
}

func riskHex(co *plotpage.ChartOpts, risk Risk) string {
	semantic := co.Palette().Semantic

	switch risk {
	case RiskSevere:
		return semantic.Severe
	case RiskHigh:
		return semantic.Bad
	case RiskModerate:
		return semantic.Warning
	default:
		return semantic.Good
	}
}

func renderPage(page *plotpage.Page, w io.Writer) error {
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render plot page: %w", err)
	}

	return nil
}
