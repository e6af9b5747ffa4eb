package layout

import "math"

// Geometry is the column layout for one frame. Bars are -1 when hidden.
type Geometry struct {
	// SidebarWidth includes the sidebar's right border column.
	SidebarWidth int
	SidebarBar   int

	EditorX      int
	EditorWidth  int
	PreviewX     int
	PreviewWidth int
	SplitBar     int

	Height       int
	StatusHeight int
}

// minContentWidth keeps the main area usable when the terminal is narrow.
const minContentWidth = 10

// Compute calculates pane geometry for the terminal size and view mode and
// remembers it for hit testing.
func (c *Controller) Compute(totalWidth, totalHeight int, mode ViewMode) Geometry {
	// During live resizes some terminals momentarily report 0 (or even
	// negative) dimensions.
	if totalWidth < 1 {
		totalWidth = 1
	}
	if totalHeight < 2 {
		totalHeight = 2
	}

	g := Geometry{
		SidebarBar:   -1,
		SplitBar:     -1,
		PreviewX:     -1,
		StatusHeight: 1,
		Height:       totalHeight - 1,
	}

	if c.collapsed {
		g.SidebarWidth = c.cfg.CollapsedWidth
	} else {
		g.SidebarWidth = int(math.Round(c.sidebar.Value()))
	}
	// The stored width keeps its clamped value; only the rendering shrinks.
	if limit := totalWidth - minContentWidth; g.SidebarWidth > limit {
		g.SidebarWidth = max(limit, 0)
	}
	if !c.collapsed && g.SidebarWidth > 0 {
		g.SidebarBar = g.SidebarWidth - 1
	}

	contentX := g.SidebarWidth
	contentWidth := max(totalWidth-contentX, 1)
	c.split.SetContainer(contentX, contentWidth)
	c.split.SetEnabled(mode == ViewSplit)

	switch mode {
	case ViewEditor:
		g.EditorX = contentX
		g.EditorWidth = contentWidth
	case ViewPreview:
		g.PreviewX = contentX
		g.PreviewWidth = contentWidth
	default:
		ew := int(math.Round(float64(contentWidth) * c.split.Value() / 100))
		ew = min(max(ew, 1), contentWidth-1)
		g.EditorX = contentX
		g.EditorWidth = ew
		g.SplitBar = contentX + ew
		g.PreviewX = g.SplitBar
		g.PreviewWidth = max(contentWidth-ew, 1)
	}

	c.geom = g
	return g
}

// Geometry returns the last computed geometry.
func (c *Controller) Geometry() Geometry { return c.geom }

// InSidebar reports whether column x falls in the sidebar, excluding its
// border column.
func (g Geometry) InSidebar(x int) bool {
	return x >= 0 && x < g.SidebarWidth-1
}

// InEditor reports whether column x falls in the editor pane.
func (g Geometry) InEditor(x int) bool {
	return g.EditorWidth > 0 && x >= g.EditorX && x < g.EditorX+g.EditorWidth
}

// InPreview reports whether column x falls in the preview pane.
func (g Geometry) InPreview(x int) bool {
	return g.PreviewX >= 0 && x >= g.PreviewX && x < g.PreviewX+g.PreviewWidth
}
