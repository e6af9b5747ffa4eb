package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCapture struct {
	acquired int
	released int
}

func (c *countingCapture) Acquire() { c.acquired++ }
func (c *countingCapture) Release() { c.released++ }

func (c *countingCapture) held() bool { return c.acquired > c.released }

func TestSplitter_OffsetClampsToMax(t *testing.T) {
	capture := &countingCapture{}
	s := NewSplitter(Offset, 300, 200, 600, capture)

	require.True(t, s.Press(300))
	assert.Equal(t, Dragging, s.State())
	assert.True(t, capture.held())

	assert.True(t, s.Move(900))
	assert.Equal(t, 600.0, s.Value())

	require.True(t, s.Release())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 600.0, s.Value())
	assert.Equal(t, 1, capture.acquired)
	assert.Equal(t, 1, capture.released)
}

func TestSplitter_OffsetClampsToMin(t *testing.T) {
	s := NewSplitter(Offset, 300, 200, 600, nil)
	s.Press(300)
	s.Move(0)
	s.Release()
	assert.Equal(t, 200.0, s.Value())
}

func TestSplitter_OffsetUsesDelta(t *testing.T) {
	s := NewSplitter(Offset, 30, 20, 60, nil)
	s.Press(29)
	assert.True(t, s.Move(35))
	assert.Equal(t, 36.0, s.Value())
	assert.True(t, s.Move(25))
	assert.Equal(t, 26.0, s.Value())
	s.Release()
}

func TestSplitter_RatioFromContainer(t *testing.T) {
	s := NewSplitter(Ratio, 50, MinSplitRatio, MaxSplitRatio, nil)
	s.SetContainer(100, 200)

	tests := []struct {
		x    int
		want float64
	}{
		{150, 25},
		{200, 50},
		{110, 20}, // 5% clamps to 20
		{290, 80}, // 95% clamps to 80
	}

	require.True(t, s.Press(200))
	for _, tt := range tests {
		s.Move(tt.x)
		assert.Equal(t, tt.want, s.Value(), "x=%d", tt.x)
	}
	s.Release()
}

func TestSplitter_PressReleaseWithoutMove(t *testing.T) {
	capture := &countingCapture{}
	s := NewSplitter(Offset, 42, 20, 60, capture)

	s.Press(10)
	s.Release()

	assert.Equal(t, 42.0, s.Value())
	assert.Equal(t, Idle, s.State())
	assert.False(t, capture.held())
}

func TestSplitter_MoveWhileIdleIgnored(t *testing.T) {
	s := NewSplitter(Offset, 42, 20, 60, nil)
	assert.False(t, s.Move(100))
	assert.Equal(t, 42.0, s.Value())
	assert.False(t, s.Release())
}

func TestSplitter_DoublePressAcquiresOnce(t *testing.T) {
	capture := &countingCapture{}
	s := NewSplitter(Offset, 42, 20, 60, capture)

	assert.True(t, s.Press(10))
	assert.False(t, s.Press(12))
	s.Release()
	s.Release()

	assert.Equal(t, 1, capture.acquired)
	assert.Equal(t, 1, capture.released)
}

func TestSplitter_DisabledIgnoresPress(t *testing.T) {
	capture := &countingCapture{}
	s := NewSplitter(Offset, 42, 20, 60, capture)
	s.SetEnabled(false)

	assert.False(t, s.Press(10))
	assert.Equal(t, Idle, s.State())
	assert.Zero(t, capture.acquired)
}

func TestSplitter_DisableCancelsDrag(t *testing.T) {
	capture := &countingCapture{}
	s := NewSplitter(Offset, 42, 20, 60, capture)
	s.Press(10)
	s.SetEnabled(false)

	assert.Equal(t, Idle, s.State())
	assert.False(t, capture.held())
}

func TestNewSplitter_ClampsInitialValue(t *testing.T) {
	assert.Equal(t, 60.0, NewSplitter(Offset, 90, 20, 60, nil).Value())
	assert.Equal(t, 20.0, NewSplitter(Offset, 5, 20, 60, nil).Value())
}
