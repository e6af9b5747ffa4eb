package layout

import (
	"fmt"
	"math"
	"strings"
)

// ViewMode selects which of the editor and preview panes are shown.
type ViewMode int

const (
	ViewSplit ViewMode = iota
	ViewEditor
	ViewPreview
)

func (m ViewMode) String() string {
	switch m {
	case ViewEditor:
		return "editor"
	case ViewPreview:
		return "preview"
	default:
		return "split"
	}
}

// Next cycles editor → split → preview → editor.
func (m ViewMode) Next() ViewMode {
	switch m {
	case ViewEditor:
		return ViewSplit
	case ViewSplit:
		return ViewPreview
	default:
		return ViewEditor
	}
}

// ParseViewMode parses "editor", "split" or "preview".
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "split", "":
		return ViewSplit, nil
	case "editor":
		return ViewEditor, nil
	case "preview":
		return ViewPreview, nil
	}
	return ViewSplit, fmt.Errorf("unknown view mode %q", s)
}

// Split ratio bounds, in percent of the content width given to the editor.
const (
	MinSplitRatio = 20
	MaxSplitRatio = 80
)

// Config holds the layout defaults. Widths are terminal columns.
type Config struct {
	SidebarWidth    int
	MinSidebarWidth int
	MaxSidebarWidth int
	CollapsedWidth  int
	SplitRatio      float64
	// HitSlop widens the grab area on each side of a splitter bar.
	HitSlop int
}

// DefaultConfig returns the stock layout.
func DefaultConfig() Config {
	return Config{
		SidebarWidth:    32,
		MinSidebarWidth: 20,
		MaxSidebarWidth: 60,
		CollapsedWidth:  3,
		SplitRatio:      50,
		HitSlop:         1,
	}
}

// State is a snapshot of the layout controller.
type State struct {
	SidebarWidth     int
	SidebarCollapsed bool
	SplitRatio       float64
	Resizing         bool
}

type target int

const (
	targetNone target = iota
	targetSidebar
	targetSplit
)

// Controller owns the sidebar and split-view splitters plus the sidebar
// collapse flag.
type Controller struct {
	cfg       Config
	sidebar   *Splitter
	split     *Splitter
	collapsed bool
	active    target
	geom      Geometry
}

// NewController builds a controller from cfg. Both splitters share capture.
func NewController(cfg Config, capture Capture) *Controller {
	if cfg.MaxSidebarWidth < cfg.MinSidebarWidth {
		cfg.MaxSidebarWidth = cfg.MinSidebarWidth
	}
	if cfg.HitSlop < 0 {
		cfg.HitSlop = 0
	}
	return &Controller{
		cfg: cfg,
		sidebar: NewSplitter(Offset, float64(cfg.SidebarWidth),
			float64(cfg.MinSidebarWidth), float64(cfg.MaxSidebarWidth), capture),
		split: NewSplitter(Ratio, cfg.SplitRatio, MinSplitRatio, MaxSplitRatio, capture),
	}
}

// State returns the current layout state.
func (c *Controller) State() State {
	return State{
		SidebarWidth:     int(math.Round(c.sidebar.Value())),
		SidebarCollapsed: c.collapsed,
		SplitRatio:       c.split.Value(),
		Resizing:         c.Resizing(),
	}
}

// Resizing reports whether either splitter is being dragged.
func (c *Controller) Resizing() bool {
	return c.sidebar.State() == Dragging || c.split.State() == Dragging
}

// ToggleSidebar collapses or expands the sidebar. It is ignored while a
// drag is in progress and reports whether the toggle took effect. The
// expanded width is kept across collapse.
func (c *Controller) ToggleSidebar() bool {
	if c.Resizing() {
		return false
	}
	c.collapsed = !c.collapsed
	c.sidebar.SetEnabled(!c.collapsed)
	return true
}

// Collapsed reports whether the sidebar is collapsed.
func (c *Controller) Collapsed() bool { return c.collapsed }

// ResizeSidebar changes the sidebar width by delta columns (keyboard
// resizing). Ignored while collapsed or dragging.
func (c *Controller) ResizeSidebar(delta int) bool {
	if c.collapsed || c.Resizing() {
		return false
	}
	before := c.sidebar.Value()
	c.sidebar.SetValue(before + float64(delta))
	return c.sidebar.Value() != before
}

// ResizeSplit changes the split ratio by delta percent. Ignored while
// dragging.
func (c *Controller) ResizeSplit(delta float64) bool {
	if c.Resizing() {
		return false
	}
	before := c.split.Value()
	c.split.SetValue(before + delta)
	return c.split.Value() != before
}

// Press routes a pointer press at column x. A drag starts only when x is
// within a visible splitter's hit region; it returns whether one did.
func (c *Controller) Press(x int) bool {
	if c.Resizing() {
		return false
	}
	g := c.geom
	if g.SidebarBar >= 0 && c.hit(x, g.SidebarBar) && c.sidebar.Press(x) {
		// A narrow terminal draws the sidebar thinner than stored; drag from
		// what is on screen.
		if w := float64(g.SidebarWidth); w < c.sidebar.originV {
			c.sidebar.originV = w
		}
		c.active = targetSidebar
		return true
	}
	if g.SplitBar >= 0 && c.hit(x, g.SplitBar) && c.split.Press(x) {
		c.active = targetSplit
		return true
	}
	return false
}

func (c *Controller) hit(x, bar int) bool {
	return x >= bar-c.cfg.HitSlop && x <= bar+c.cfg.HitSlop
}

// Move forwards pointer motion to the dragging splitter and reports whether
// a dimension changed.
func (c *Controller) Move(x int) bool {
	switch c.active {
	case targetSidebar:
		return c.sidebar.Move(x)
	case targetSplit:
		return c.split.Move(x)
	}
	return false
}

// Release ends the active drag, wherever the pointer is.
func (c *Controller) Release() bool {
	var ok bool
	switch c.active {
	case targetSidebar:
		ok = c.sidebar.Release()
	case targetSplit:
		ok = c.split.Release()
	}
	c.active = targetNone
	return ok
}

// Cancel force-ends any drag, e.g. when the terminal loses focus.
func (c *Controller) Cancel() {
	c.sidebar.Cancel()
	c.split.Cancel()
	c.active = targetNone
}
