// Package layout turns pointer drags into clamped pane dimensions for the
// sidebar and the editor/preview split, and computes the resulting column
// geometry.
package layout

// DragState is the state of a single splitter.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Capture is the pointer grab held for the whole lifetime of a drag: while
// acquired, every pointer event goes to the dragging splitter, the resize
// indicator is shown and text input is suppressed. Every Acquire is matched
// by exactly one Release.
type Capture interface {
	Acquire()
	Release()
}

type nopCapture struct{}

func (nopCapture) Acquire() {}
func (nopCapture) Release() {}

// Mode selects how pointer movement maps to a dimension.
type Mode int

const (
	// Offset adds the pointer delta since the press to the dimension the
	// drag started from.
	Offset Mode = iota
	// Ratio recomputes the dimension as the pointer's percentage position
	// inside the container.
	Ratio
)

// Splitter is a draggable boundary between two regions.
type Splitter struct {
	mode     Mode
	min, max float64
	value    float64
	enabled  bool
	capture  Capture

	state   DragState
	originX int
	originV float64

	containerLeft  int
	containerWidth int
}

// NewSplitter returns an enabled, idle splitter holding value clamped to
// [min, max]. A nil capture is allowed.
func NewSplitter(mode Mode, value, min, max float64, capture Capture) *Splitter {
	if capture == nil {
		capture = nopCapture{}
	}
	if max < min {
		max = min
	}
	s := &Splitter{
		mode:    mode,
		min:     min,
		max:     max,
		enabled: true,
		capture: capture,
	}
	s.value = s.clamp(value)
	return s
}

func (s *Splitter) clamp(v float64) float64 {
	if v < s.min {
		return s.min
	}
	if v > s.max {
		return s.max
	}
	return v
}

// Value returns the current dimension.
func (s *Splitter) Value() float64 { return s.value }

// State returns the drag state.
func (s *Splitter) State() DragState { return s.state }

// Bounds returns the clamp range.
func (s *Splitter) Bounds() (min, max float64) { return s.min, s.max }

// SetValue replaces the dimension, clamped. Ignored while dragging.
func (s *Splitter) SetValue(v float64) {
	if s.state == Dragging {
		return
	}
	s.value = s.clamp(v)
}

// SetEnabled enables or disables the splitter. Disabling an active drag
// ends it.
func (s *Splitter) SetEnabled(enabled bool) {
	if !enabled && s.state == Dragging {
		s.Cancel()
	}
	s.enabled = enabled
}

// Enabled reports whether presses are accepted.
func (s *Splitter) Enabled() bool { return s.enabled }

// SetContainer records the container bounds used by Ratio splitters.
func (s *Splitter) SetContainer(left, width int) {
	s.containerLeft = left
	s.containerWidth = width
}

// Press starts a drag at pointer column x. It returns false, and does
// nothing, when the splitter is disabled or already dragging.
func (s *Splitter) Press(x int) bool {
	if !s.enabled || s.state == Dragging {
		return false
	}
	s.state = Dragging
	s.originX = x
	s.originV = s.value
	s.capture.Acquire()
	return true
}

// Move updates the dimension for pointer column x and reports whether it
// changed. Moves outside a drag are ignored.
func (s *Splitter) Move(x int) bool {
	if s.state != Dragging {
		return false
	}

	var next float64
	switch s.mode {
	case Ratio:
		if s.containerWidth <= 0 {
			return false
		}
		next = float64(x-s.containerLeft) / float64(s.containerWidth) * 100
	default:
		next = s.originV + float64(x-s.originX)
	}

	next = s.clamp(next)
	if next == s.value {
		return false
	}
	s.value = next
	return true
}

// Release ends the drag. The dimension keeps whatever the last Move set.
func (s *Splitter) Release() bool {
	if s.state != Dragging {
		return false
	}
	s.state = Idle
	s.capture.Release()
	return true
}

// Cancel ends a drag forced by an outside event (focus loss, resize). The
// capture is released the same way as on a normal release.
func (s *Splitter) Cancel() {
	s.Release()
}
