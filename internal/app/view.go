package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	minW, minH := a.minWindowSize()
	if a.width < minW || a.height < minH {
		msg := fmt.Sprintf("Window too small (%dx%d)\nMinimum supported: %dx%d", a.width, a.height, minW, minH)
		box := lipgloss.NewStyle().
			Foreground(a.ctx.Theme.Text).
			Padding(1, 2).
			Render(msg)
		base := strings.Repeat("\n", max(a.height-1, 0))
		return overlayCenter(base, box, a.width, a.height)
	}

	g := a.geom
	h := a.contentHeight()

	var columns []string
	if g.SidebarWidth > 1 {
		columns = append(columns, fit(a.sidebar.View(), g.SidebarWidth-1, h), a.bar(h))
	}
	if g.EditorWidth > 0 {
		columns = append(columns, fit(a.editor.View(), g.EditorWidth, h))
	}
	if g.PreviewWidth > 0 {
		if g.SplitBar >= 0 {
			columns = append(columns, a.bar(h))
		}
		columns = append(columns, fit(a.preview.View(), a.previewWidth(), h))
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, columns...)}
	if a.searchbar.Visible() {
		rows = append(rows, a.searchbar.View())
	}
	rows = append(rows, a.status.View())
	result := strings.Join(rows, "\n")

	// Overlay which-key popup
	if a.leader.showHelp {
		if v := a.whichKey.View(); v != "" {
			result = overlayCenter(result, v, a.width, a.height)
		}
	}
	if a.outline.Visible() {
		result = overlayCenter(result, a.outline.View(), a.width, a.height)
	}
	if a.finder.Visible() {
		result = overlayCenter(result, a.finder.View(), a.width, a.height)
	}
	if a.prompt.Visible() {
		result = overlayCenter(result, a.prompt.View(), a.width, a.height)
	}

	if toasts := a.ctx.RenderToasts(); toasts != "" {
		col := max(a.width-lipgloss.Width(toasts)-1, 0)
		result = overlayAt(result, toasts, 1, col, a.width)
	}
	return result
}

// bar draws a splitter column. It lights up while a drag is in progress.
func (a *App) bar(height int) string {
	color := a.ctx.Theme.Border
	if a.layout.Resizing() {
		color = a.ctx.Theme.Accent
	}
	cell := lipgloss.NewStyle().Foreground(color).Render("│")
	return strings.TrimSuffix(strings.Repeat(cell+"\n", height), "\n")
}

// fit clips s to exactly width x height cells.
func fit(s string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).MaxWidth(width).
		Height(height).MaxHeight(height).
		Render(s)
}

func overlayCenter(base, overlay string, width, height int) string {
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := 0
	for _, line := range overlayLines {
		overlayWidth = max(overlayWidth, lipgloss.Width(line))
	}
	row := max((height-len(overlayLines))/2, 0)
	col := max((width-overlayWidth)/2, 0)
	return overlayAt(base, overlay, row, col, width)
}

// overlayAt draws overlay over base with its top-left corner at row/col.
func overlayAt(base, overlay string, row, col, width int) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := 0
	for _, line := range overlayLines {
		overlayWidth = max(overlayWidth, lipgloss.Width(line))
	}

	for i, overlayLine := range overlayLines {
		r := row + i
		if r >= len(baseLines) {
			break
		}

		baseLine := baseLines[r]
		// Pad with spaces based on *visible* width (handles ANSI strings safely).
		if w := lipgloss.Width(baseLine); w < col {
			baseLine += strings.Repeat(" ", col-w)
		}

		if w := lipgloss.Width(overlayLine); w < overlayWidth {
			overlayLine += strings.Repeat(" ", overlayWidth-w)
		}

		// Overlay by columns without breaking ANSI sequences.
		left := ansi.Cut(baseLine, 0, col)
		right := ansi.Cut(baseLine, col+overlayWidth, width)
		baseLines[r] = ansi.Truncate(left+overlayLine+right, width, "")
	}

	return strings.Join(baseLines, "\n")
}
