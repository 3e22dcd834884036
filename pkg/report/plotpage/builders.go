package plotpage

import (
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// BuildBarChart builds a themed bar chart with one series per map entry.
// Series are added in sorted name order so output is deterministic.
func BuildBarChart(cOpts *ChartOpts, labels []string, series map[string][]float64, yAxisLabel string) *charts.Bar {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init("100%", "500px")),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithLegendOpts(cOpts.Legend()),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithDataZoomOpts(cOpts.DataZoom()...),
		charts.WithXAxisOpts(cOpts.XAxis("")),
		charts.WithYAxisOpts(cOpts.YAxis(yAxisLabel)),
	)

	bar.SetXAxis(labels)

	for _, name := range sortedSeriesNames(series) {
		values := series[name]

		data := make([]opts.BarData, 0, len(values))
		for _, value := range values {
			data = append(data, opts.BarData{Value: value})
		}

		bar.AddSeries(name, data)
	}

	return bar
}

// BuildLineChart builds a themed line chart with one series per map entry.
// Series are added in sorted name order so output is deterministic.
func BuildLineChart(cOpts *ChartOpts, labels []string, series map[string][]float64, yAxisLabel string) *charts.Line {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init("100%", "500px")),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithLegendOpts(cOpts.Legend()),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithDataZoomOpts(cOpts.DataZoom()...),
		charts.WithXAxisOpts(cOpts.XAxis("")),
		charts.WithYAxisOpts(cOpts.YAxis(yAxisLabel)),
	)

	line.SetXAxis(labels)

	for _, name := range sortedSeriesNames(series) {
		values := series[name]

		data := make([]opts.LineData, 0, len(values))
		for _, value := range values {
			data = append(data, opts.LineData{Value: value})
		}

		line.AddSeries(name, data, charts.WithLineChartOpts(opts.LineChart{
			Smooth: opts.Bool(true),
		}))
	}

	return line
}

func sortedSeriesNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
