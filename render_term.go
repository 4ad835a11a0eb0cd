package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	crumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0066cc"))

	currentCrumbStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Bold(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf00")).
			Bold(true)

	reportStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#63be7b"))

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#999999"))

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// termHeaderRunes is the header width on terminals, which cannot rotate text
const termHeaderRunes = 12

// RenderBreadcrumbs renders the trail as "Home › A › B"
func RenderBreadcrumbs(crumbs []Crumb) string {
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		if c.Current {
			parts[i] = currentCrumbStyle.Render(c.Label)
		} else {
			parts[i] = crumbStyle.Render(c.Label)
		}
	}
	return strings.Join(parts, " › ")
}

// RenderListing renders a listing or grouped listing as plain lines
func RenderListing(view View) string {
	var s strings.Builder

	s.WriteString(RenderBreadcrumbs(view.Crumbs))
	s.WriteString("\n\n")

	if view.Status != "" {
		s.WriteString(view.Status)
		s.WriteString("\n")
		return s.String()
	}

	if len(view.Groups) > 0 {
		for _, group := range view.Groups {
			s.WriteString(categoryStyle.Render(group.Category))
			s.WriteString("\n")
			for _, e := range group.Entries {
				s.WriteString("  ")
				s.WriteString(entryLine(e))
				s.WriteString("\n")
			}
		}
		return s.String()
	}

	for _, e := range view.Folders {
		s.WriteString(directoryStyle.Render(e.Name + "/"))
		s.WriteString("\n")
	}
	for _, e := range view.Files {
		s.WriteString(entryLine(e))
		s.WriteString("\n")
	}
	return s.String()
}

func entryLine(e Entry) string {
	if e.IsDir {
		return directoryStyle.Render(e.Name + "/")
	}

	line := fileStyle.Render(e.Name)
	if e.Report {
		line += " " + reportStyle.Render("[report]")
	}
	if details := entryDetails(e); details != "" {
		line += " " + helpStyle.Render(details)
	}
	return line
}

func entryDetails(e Entry) string {
	var parts []string
	if e.Size > 0 {
		parts = append(parts, humanize.Bytes(uint64(e.Size)))
	}
	if !e.Modified.IsZero() {
		parts = append(parts, humanize.Time(e.Modified))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// RenderTableTerm renders a table model with per-cell background colours
func RenderTableTerm(model TableModel) string {
	if len(model.Headers) == 0 {
		return "[Empty report]"
	}

	headers := make([]string, len(model.Headers))
	for i, h := range model.Headers {
		headers[i] = h.Display
		if h.Rotated {
			headers[i] = truncateRunes(h.Display, termHeaderRunes)
		}
	}

	rows := make([][]string, len(model.Rows))
	for r, row := range model.Rows {
		rows[r] = make([]string, len(row))
		for c, cell := range row {
			rows[r][c] = cell.Display
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if row < 0 || row >= len(model.Rows) || col >= len(model.Rows[row]) {
				return tableCellStyle
			}
			return termCellStyle(model.Rows[row][col])
		})

	return t.Render()
}

func termCellStyle(cell Cell) lipgloss.Style {
	style := tableCellStyle
	if cell.Align == AlignRight {
		style = style.Align(lipgloss.Right)
	}
	if cell.Background != "" {
		style = style.
			Background(lipgloss.Color(cell.Background)).
			Foreground(lipgloss.Color("#000000"))
	}
	return style
}

// RenderDefinitionsTerm renders the tooltips of a table as markdown for the terminal
func RenderDefinitionsTerm(model TableModel, width int) (string, error) {
	var md strings.Builder
	for _, h := range model.Headers {
		if h.Tooltip == nil {
			continue
		}
		md.WriteString(h.Tooltip.Markdown())
		md.WriteString("\n\n---\n\n")
	}
	if md.Len() == 0 {
		return "No column definitions available.", nil
	}

	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return renderer.Render(md.String())
}
