package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"poolsim/internal/container"
	"poolsim/internal/fuel"
	"poolsim/internal/inventory"
	"poolsim/internal/simulation"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	cellStyle    = lipgloss.NewStyle().PaddingRight(2)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// renderTable lays rows out in left-aligned columns sized to their widest cell.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		cols := make([]string, len(cells))
		for i, c := range cells {
			cols[i] = style.Width(widths[i] + 2).Render(c)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	lines := []string{line(headers, headerStyle.Inherit(cellStyle))}
	for _, row := range rows {
		lines = append(lines, line(row, cellStyle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProblems(problems []inventory.Outcome) string {
	var b strings.Builder
	for _, p := range problems {
		id := p.AssemblyID
		if id == "" {
			id = "?"
		}
		msg := fmt.Sprintf("record %d (%s): %s", p.Index, id, p.Status)
		if p.Err != nil {
			msg += ": " + p.Err.Error()
		}
		b.WriteString(warningStyle.Render(msg))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDays(days []simulation.DaySummary) string {
	headers := []string{"Date"}
	for _, s := range fuel.Sections {
		headers = append(headers, s.String(), s.String()+" kW")
	}
	headers = append(headers, "Moves", "Shipped", "Notes")

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		row := []string{d.Date.Format(fuel.DateLayout)}
		for _, s := range fuel.Sections {
			st := d.Sections[s]
			row = append(row, fmt.Sprint(st.Count), fmt.Sprintf("%.2f", st.Heat))
		}
		shipped := 0
		for _, n := range d.Removed {
			shipped += n
		}
		notes := ""
		if n := len(d.Diagnostics) + d.HeatDiagnostics; n > 0 {
			notes = fmt.Sprint(n)
		}
		row = append(row, fmt.Sprint(d.Moves), fmt.Sprint(shipped), notes)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return mutedStyle.Render("no days simulated")
	}
	return renderTable(headers, rows)
}

func renderContainer(c *container.Container) string {
	rows := make([][]string, 0, container.Cells)
	for _, cell := range c.Cells {
		if cell.Empty() {
			rows = append(rows, []string{fmt.Sprint(cell.Number), mutedStyle.Render("empty"), "", ""})
			continue
		}
		a := cell.Assembly
		rows = append(rows, []string{
			fmt.Sprint(cell.Number),
			a.ID,
			fmt.Sprintf("%d/%d", a.Coordinate.Bridge, a.Coordinate.Cart),
			fmt.Sprintf("%.3f", cell.Heat),
		})
	}
	title := headerStyle.Render(fmt.Sprintf("Container %d: %d assemblies, %.3f kW",
		c.Number, c.Count(), c.Heat()))
	return title + "\n" + renderTable([]string{"Cell", "Assembly", "From", "Heat"}, rows)
}
