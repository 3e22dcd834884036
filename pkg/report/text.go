package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const msgNoFunctions = "No functions scored."

// WriteText renders the report for terminals: a summary line, the
// scored functions ordered worst-first and a risk breakdown. A limit
// above zero caps the number of function rows.
func (r *Report) WriteText(w io.Writer, limit int) error {
	var out strings.Builder

	out.WriteString(r.summaryLine())
	out.WriteString("\n\n")

	functions := r.TopFunctions(-1)
	if len(functions) == 0 {
		out.WriteString(msgNoFunctions)
		out.WriteString("\n")

		return writeString(w, out.String())
	}

	shown := functions
	if limit > 0 && limit < len(shown) {
		shown = shown[:limit]
	}

	out.WriteString(functionTable(shown, len(functions)))
	out.WriteString("\n\n")
	out.WriteString(r.riskLine())
	out.WriteString("\n")

	return writeString(w, out.String())
}

// WriteCompact renders one tab-separated line per function, worst
// first: score, risk, name, location. Suited to grep and shell
// pipelines.
func (r *Report) WriteCompact(w io.Writer) error {
	var out strings.Builder

	for _, fn := range r.TopFunctions(-1) {
		fmt.Fprintf(&out, "%d\t%s\t%s\t%s\n", fn.Complexity, fn.Risk, fn.Name, fn.Location())
	}

	if out.Len() == 0 {
		out.WriteString(msgNoFunctions)
		out.WriteString("\n")
	}

	return writeString(w, out.String())
}

func (r *Report) summaryLine() string {
	return fmt.Sprintf("Cognitive complexity for %s\nfiles: %d | functions: %d | total: %s | max: %d | mean: %.1f",
		r.Root,
		r.Summary.Files,
		r.Summary.Functions,
		humanize.Comma(int64(r.Summary.Total)),
		r.Summary.Max,
		r.Summary.Mean,
	)
}

func (r *Report) riskLine() string {
	b := r.Summary.Risk

	parts := []string{
		riskColor(RiskSevere).Sprintf("%d severe", b.Severe),
		riskColor(RiskHigh).Sprintf("%d high", b.High),
		riskColor(RiskModerate).Sprintf("%d moderate", b.Moderate),
		riskColor(RiskLow).Sprintf("%d low", b.Low),
	}

	return "risk: " + strings.Join(parts, " | ")
}

func functionTable(shown []Function, total int) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendHeader(table.Row{"SCORE", "RISK", "RECURSION", "FUNCTION", "LOCATION"})

	for _, fn := range shown {
		tbl.AppendRow(table.Row{
			fn.Complexity,
			riskColor(fn.Risk).Sprint(string(fn.Risk)),
			fn.Recursion,
			fn.Name,
			fn.Location(),
		})
	}

	if len(shown) < total {
		tbl.AppendFooter(table.Row{fmt.Sprintf("Showing %d of %d functions", len(shown), total)})
	} else {
		tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d functions", total)})
	}

	return tbl.Render()
}

func riskColor(risk Risk) *color.Color {
	switch risk {
	case RiskSevere:
		return color.New(color.FgRed, color.Bold)
	case RiskHigh:
		return color.New(color.FgRed)
	case RiskModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
