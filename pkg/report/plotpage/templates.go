package plotpage

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// renderTemplate executes one embedded template into a string.
func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// headerData feeds header.html.
type headerData struct {
	ProjectName     string
	ProjectSubtitle string
	Title           string
	Description     string
	LogoDataURI     template.URL
	ShowThemeToggle bool
}

// sectionData feeds section.html.
type sectionData struct {
	Title    string
	Subtitle string
	Chart    template.HTML
	Hint     *Hint
}

// pageData feeds page.html.
type pageData struct {
	Title       string
	ProjectName string
	DarkClass   string
	Light       ThemeConfig
	Dark        ThemeConfig
	ExtraCSS    template.CSS
	Header      template.HTML
	Content     template.HTML
	Scripts     template.HTML
}

const logoSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32">` +
	`<rect width="32" height="32" rx="7" fill="#d97706"/>` +
	`<path d="M10 22c-2.8 0-5-2.7-5-6s2.2-6 5-6c1.6 0 3 .9 3.9 2.3` +
	`M22 10c2.8 0 5 2.7 5 6s-2.2 6-5 6c-1.6 0-3-.9-3.9-2.3"` +
	` stroke="#fff" stroke-width="2.4" fill="none" stroke-linecap="round"/></svg>`

// LogoDataURI returns the project mark as an inline data URI so pages
// render without external assets.
func LogoDataURI() template.URL {
	encoded := base64.StdEncoding.EncodeToString([]byte(logoSVG))

	return template.URL("data:image/svg+xml;base64," + encoded) //nolint:gosec // Static asset.
}
