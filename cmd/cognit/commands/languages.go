package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cognit/pkg/lang"
)

// NewLanguagesCommand creates the command listing supported languages.
func NewLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Long:  `List the languages cognit can score, with their aliases and file extensions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeLanguages(lang.DefaultRegistry(), cmd.OutOrStdout())
		},
	}
}

func writeLanguages(registry *lang.Registry, w io.Writer) error {
	languages := registry.Languages()

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendHeader(table.Row{"LANGUAGE", "ALIASES", "EXTENSIONS"})

	for _, language := range languages {
		tbl.AppendRow(table.Row{
			language.Name,
			strings.Join(language.Aliases, ", "),
			strings.Join(language.Extensions, ", "),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d languages", len(languages)), "", ""})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write languages: %w", err)
	}

	return nil
}
