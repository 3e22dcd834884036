// Package plotpage assembles themed HTML report pages out of go-echarts
// charts. Charts render their own standalone documents; the renderer
// extracts the chart fragment from each and embeds it in a shared page
// shell with a header, per-section hints and a light/dark theme toggle.
package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// Renderable is anything that can render itself as HTML. All go-echarts
// chart types satisfy it.
type Renderable interface {
	Render(w io.Writer) error
}

// Hint is a short list of reading aids displayed under a chart.
type Hint struct {
	Title string
	Items []string
}

// Section is one chart block on a page.
type Section struct {
	Title    string
	Subtitle string
	Chart    Renderable
	Hint     *Hint
}

// Style carries page-level style overrides.
type Style struct {
	ExtraCSS template.CSS
}

// Page is a complete report page.
type Page struct {
	ProjectName     string
	ProjectSubtitle string
	Title           string
	Description     string
	ShowThemeToggle bool
	Style           Style
	Theme           Theme
	Sections        []Section
}

// NewPage creates a page with project branding applied.
func NewPage(title, description string) *Page {
	return &Page{
		ProjectName:     "Cognit",
		ProjectSubtitle: "Cognitive Complexity",
		Title:           title,
		Description:     description,
		ShowThemeToggle: true,
		Theme:           ThemeLight,
	}
}

// WithTheme sets the initial theme and returns the page.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// Add appends sections to the page.
func (p *Page) Add(sections ...Section) *Page {
	p.Sections = append(p.Sections, sections...)

	return p
}

// Render writes the full HTML document to w.
func (p *Page) Render(w io.Writer) error {
	renderer := &HTMLRenderer{page: p}

	return renderer.Render(w)
}

// HTMLRenderer renders a Page as a standalone HTML document.
type HTMLRenderer struct {
	page *Page
}

// Render writes the document to w.
func (r *HTMLRenderer) Render(w io.Writer) error {
	header, err := renderTemplate("header.html", headerData{
		ProjectName:     r.page.ProjectName,
		ProjectSubtitle: r.page.ProjectSubtitle,
		Title:           r.page.Title,
		Description:     r.page.Description,
		LogoDataURI:     LogoDataURI(),
		ShowThemeToggle: r.page.ShowThemeToggle,
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	var content strings.Builder

	for _, section := range r.page.Sections {
		rendered, serr := r.renderSection(section)
		if serr != nil {
			return fmt.Errorf("render section %q: %w", section.Title, serr)
		}

		content.WriteString(rendered)
	}

	scripts, err := renderTemplate("scripts.html", nil)
	if err != nil {
		return fmt.Errorf("render scripts: %w", err)
	}

	page, err := renderTemplate("page.html", pageData{
		Title:       r.page.Title,
		ProjectName: r.page.ProjectName,
		DarkClass:   r.darkClass(),
		Light:       GetThemeConfig(ThemeLight),
		Dark:        GetThemeConfig(ThemeDark),
		ExtraCSS:    r.page.Style.ExtraCSS,
		Header:      template.HTML(header),           //nolint:gosec // Rendered from a trusted template.
		Content:     template.HTML(content.String()), //nolint:gosec // Rendered from trusted templates.
		Scripts:     template.HTML(scripts),          //nolint:gosec // Rendered from a trusted template.
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	if _, err := io.WriteString(w, page); err != nil {
		return fmt.Errorf("write page: %w", err)
	}

	return nil
}

func (r *HTMLRenderer) darkClass() string {
	if r.page.Theme == ThemeDark {
		return "dark"
	}

	return ""
}

func (r *HTMLRenderer) renderSection(section Section) (string, error) {
	chart, err := r.renderChart(section.Chart)
	if err != nil {
		return "", err
	}

	return renderTemplate("section.html", sectionData{
		Title:    section.Title,
		Subtitle: section.Subtitle,
		Chart:    template.HTML(chart), //nolint:gosec // Chart markup comes from go-echarts.
		Hint:     section.Hint,
	})
}

// renderChart renders a chart and strips the standalone document shell
// go-echarts wraps around it, keeping only the chart fragment.
func (r *HTMLRenderer) renderChart(chart Renderable) (string, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}

	return extractChartContent(buf.String()), nil
}

// extractChartContent pulls the chart container and its init script out
// of a full go-echarts document. Anything that is not a standalone
// document passes through unchanged.
func extractChartContent(html string) string {
	if !strings.Contains(html, "<!DOCTYPE") && !strings.Contains(html, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start < 0 {
		return html
	}

	end := strings.LastIndex(html, "</body>")
	if end < start {
		end = len(html)
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

// removeStyleTags drops inline style blocks so chart fragments cannot
// override the page styling.
func removeStyleTags(html string) string {
	const (
		openTag  = "<style"
		closeTag = "</style>"
	)

	for {
		start := strings.Index(html, openTag)
		if start < 0 {
			return html
		}

		end := strings.Index(html[start:], closeTag)
		if end < 0 {
			return html[:start]
		}

		html = html[:start] + html[start+end+len(closeTag):]
	}
}
