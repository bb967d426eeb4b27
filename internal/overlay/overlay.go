// Package overlay draws the crosshair reticle onto a per-output,
// shared-memory, ARGB8888 pixel buffer and tracks the damage regions the
// compositor needs to repaint.
package overlay

import (
	"fmt"

	"github.com/ArrayBolt3/kloak-v2/internal/geometry"
	"github.com/ArrayBolt3/kloak-v2/internal/randsrc"
)

// CursorRadius is half the side length (minus the center pixel) of the
// square block redrawn around the cursor on every frame.
const CursorRadius = 15

// MaxDrawableLayers is the overlay capacity (one overlay per output). No
// code checks against it; the number of overlays is bounded by
// geometry.MaxOutputs, the output arena's slot count, which has the same
// value.
const MaxDrawableLayers = 128

const bytesPerPixel = 4

const (
	crosshairColor  uint32 = 0xFFFF0000 // opaque red
	backgroundColor uint32 = 0x00000000 // fully transparent
)

// notOnLayer is the sentinel for last-drawn local coordinates meaning "the
// cursor was not on this overlay last frame".
const notOnLayer = -1

// Overlay is the per-output drawing state: a pixel buffer sized to the
// output's logical dimensions, plus the bookkeeping needed to redraw only
// what changed.
type Overlay struct {
	Output *geometry.Output

	width, height int32
	stride        int32
	pixels        []byte
	shmFD         int

	lastDrawnX, lastDrawnY int32

	FrameReleased bool
	FramePending  bool
	Configured    bool
}

// New allocates a shared-memory pixel buffer sized to output's current
// logical dimensions and returns the Overlay owning it.
func New(output *geometry.Output, rng *randsrc.Source) (*Overlay, error) {
	if output.Width <= 0 || output.Height <= 0 {
		return nil, fmt.Errorf("overlay: output has no geometry yet")
	}

	stride := output.Width * bytesPerPixel
	size := int(stride) * int(output.Height)

	fd, pixels, err := createShmBuffer(rng, size)
	if err != nil {
		return nil, err
	}

	o := &Overlay{
		Output:        output,
		width:         output.Width,
		height:        output.Height,
		stride:        stride,
		pixels:        pixels,
		shmFD:         fd,
		lastDrawnX:    notOnLayer,
		lastDrawnY:    notOnLayer,
		FrameReleased: true,
	}
	return o, nil
}

// ShmFD returns the file descriptor backing the pixel buffer, for
// constructing the wl_shm_pool the compositor reads from.
func (o *Overlay) ShmFD() int {
	return o.shmFD
}

// Size returns the buffer's width, height, and stride in bytes.
func (o *Overlay) Size() (width, height, stride int32) {
	return o.width, o.height, o.stride
}

// ShouldDraw reports whether this frame's preconditions are met: the
// compositor has returned the previous buffer, the layer surface has been
// configured, and the cursor moved since the last draw.
func (o *Overlay) ShouldDraw() bool {
	return o.FrameReleased && o.Configured && o.FramePending
}

// Draw redraws the crosshair at the given global cursor position if it
// falls on this overlay's output, clears the block at the previous
// position, and returns the damage rectangles the caller must submit.
// Drawing is skipped (and no damage is produced) unless ShouldDraw is true.
func (o *Overlay) Draw(cursorGlobalX, cursorGlobalY int32) []Rect {
	if !o.ShouldDraw() {
		return nil
	}

	var damages []Rect
	if o.lastDrawnX != notOnLayer && o.lastDrawnY != notOnLayer {
		damages = append(damages, o.clearBlock(o.lastDrawnX, o.lastDrawnY))
	}

	if o.Output.Contains(cursorGlobalX, cursorGlobalY) {
		localX := cursorGlobalX - o.Output.X
		localY := cursorGlobalY - o.Output.Y
		damages = append(damages, o.drawCrosshair(localX, localY))
		o.lastDrawnX, o.lastDrawnY = localX, localY
	} else {
		o.lastDrawnX, o.lastDrawnY = notOnLayer, notOnLayer
	}

	o.FramePending = false
	o.FrameReleased = false
	return damages
}

func (o *Overlay) clearBlock(centerX, centerY int32) Rect {
	x0 := centerX - CursorRadius
	y0 := centerY - CursorRadius
	size := int32(2*CursorRadius + 1)
	for dy := int32(0); dy < size; dy++ {
		for dx := int32(0); dx < size; dx++ {
			o.setPixel(x0+dx, y0+dy, backgroundColor)
		}
	}
	return ClampDamage(Rect{X: x0, Y: y0, W: size, H: size})
}

func (o *Overlay) drawCrosshair(centerX, centerY int32) Rect {
	x0 := centerX - CursorRadius
	y0 := centerY - CursorRadius
	size := int32(2*CursorRadius + 1)
	for dy := int32(0); dy < size; dy++ {
		py := y0 + dy
		for dx := int32(0); dx < size; dx++ {
			px := x0 + dx
			if px == centerX || py == centerY {
				o.setPixel(px, py, crosshairColor)
			} else {
				o.setPixel(px, py, backgroundColor)
			}
		}
	}
	return ClampDamage(Rect{X: x0, Y: y0, W: size, H: size})
}

// setPixel writes a pixel in ARGB8888, little-endian byte order (B, G, R,
// A), clipping silently against the buffer bounds.
func (o *Overlay) setPixel(x, y int32, argb uint32) {
	if x < 0 || y < 0 || x >= o.width || y >= o.height {
		return
	}
	off := y*o.stride + x*bytesPerPixel
	o.pixels[off+0] = byte(argb)
	o.pixels[off+1] = byte(argb >> 8)
	o.pixels[off+2] = byte(argb >> 16)
	o.pixels[off+3] = byte(argb >> 24)
}

// PixelAt returns the raw ARGB8888 pixel at (x, y), or 0 outside the
// buffer. Only the tests read pixels back this way.
func (o *Overlay) PixelAt(x, y int32) uint32 {
	if x < 0 || y < 0 || x >= o.width || y >= o.height {
		return 0
	}
	off := y*o.stride + x*bytesPerPixel
	return uint32(o.pixels[off+0]) | uint32(o.pixels[off+1])<<8 | uint32(o.pixels[off+2])<<16 | uint32(o.pixels[off+3])<<24
}
