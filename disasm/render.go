package disasm

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderHeading writes a section heading, bold when colored output is
// enabled.
func RenderHeading(w io.Writer, colored bool, text string) {
	if colored {
		color.New(color.Bold).Fprintln(w, text)
		return
	}
	fmt.Fprintln(w, text)
}

// RenderTable writes a borderless left-aligned table, the shape every
// attribute section and the batch summary share.
func RenderTable(w io.Writer, headers []string, rows [][]string, footer []string) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Footer: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	if len(footer) > 0 {
		footerArgs := make([]any, len(footer))
		for i, f := range footer {
			footerArgs[i] = f
		}
		table.Footer(footerArgs...)
	}
	table.Render()
}
