package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArrayBolt3/kloak-v2/internal/geometry"
)

// newTestOverlay builds an Overlay over a plain in-memory buffer, bypassing
// the real shm syscalls so drawing logic can be tested in isolation.
func newTestOverlay(width, height int32) *Overlay {
	stride := width * bytesPerPixel
	return &Overlay{
		Output:        &geometry.Output{Width: width, Height: height, InitDone: true},
		width:         width,
		height:        height,
		stride:        stride,
		pixels:        make([]byte, int(stride)*int(height)),
		lastDrawnX:    notOnLayer,
		lastDrawnY:    notOnLayer,
		FrameReleased: true,
		Configured:    true,
	}
}

func TestClampDamage_NegativeCoordinatesCollapseToZero(t *testing.T) {
	r := ClampDamage(Rect{X: -5, Y: -3, W: 31, H: 31})
	assert.Equal(t, Rect{X: 0, Y: 0, W: 31, H: 31}, r)
}

func TestClampDamage_NonNegativeUnchanged(t *testing.T) {
	r := ClampDamage(Rect{X: 10, Y: 20, W: 31, H: 31})
	assert.Equal(t, Rect{X: 10, Y: 20, W: 31, H: 31}, r)
}

func TestOverlay_ShouldDrawRequiresAllPreconditions(t *testing.T) {
	o := newTestOverlay(100, 100)
	assert.False(t, o.ShouldDraw(), "framePending is false by default")

	o.FramePending = true
	assert.True(t, o.ShouldDraw())

	o.FrameReleased = false
	assert.False(t, o.ShouldDraw())
	o.FrameReleased = true

	o.Configured = false
	assert.False(t, o.ShouldDraw())
}

func TestOverlay_DrawCrosshairWritesOpaqueRedOnCenterLines(t *testing.T) {
	o := newTestOverlay(200, 200)
	o.FramePending = true

	damages := o.Draw(100, 100)
	require.Len(t, damages, 1)
	assert.Equal(t, Rect{X: 100 - CursorRadius, Y: 100 - CursorRadius, W: 2*CursorRadius + 1, H: 2*CursorRadius + 1}, damages[0])

	assert.Equal(t, crosshairColor, o.PixelAt(100, 100))
	assert.Equal(t, crosshairColor, o.PixelAt(100-CursorRadius, 100))
	assert.Equal(t, crosshairColor, o.PixelAt(100, 100-CursorRadius))
	// a corner of the block, off both center lines, stays transparent.
	assert.Equal(t, backgroundColor, o.PixelAt(100-CursorRadius, 100-CursorRadius))
}

func TestOverlay_DrawClearsPreviousBlockOnMove(t *testing.T) {
	o := newTestOverlay(200, 200)
	o.FramePending = true
	o.Draw(50, 50)
	assert.Equal(t, crosshairColor, o.PixelAt(50, 50))

	o.FrameReleased = true
	o.FramePending = true
	damages := o.Draw(150, 150)
	require.Len(t, damages, 2) // clear old block, draw new one

	assert.Equal(t, backgroundColor, o.PixelAt(50, 50))
	assert.Equal(t, crosshairColor, o.PixelAt(150, 150))
}

func TestOverlay_DrawOffLayerClearsWithoutRedrawing(t *testing.T) {
	o := newTestOverlay(200, 200)
	o.FramePending = true
	o.Draw(50, 50)

	o.FrameReleased = true
	o.FramePending = true
	damages := o.Draw(9999, 9999) // far outside this output
	require.Len(t, damages, 1)    // only the clear; nothing drawn at 9999,9999

	assert.Equal(t, backgroundColor, o.PixelAt(50, 50))
}

func TestOverlay_DrawSkippedWithoutPrecondition(t *testing.T) {
	o := newTestOverlay(200, 200)
	o.FramePending = false
	damages := o.Draw(50, 50)
	assert.Nil(t, damages)
	assert.Equal(t, backgroundColor, o.PixelAt(50, 50))
}

func TestOverlay_SetPixelClipsOutOfBounds(t *testing.T) {
	o := newTestOverlay(10, 10)
	assert.NotPanics(t, func() {
		o.setPixel(-1, -1, crosshairColor)
		o.setPixel(100, 100, crosshairColor)
	})
}
