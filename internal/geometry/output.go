// Package geometry tracks the compositor's outputs in global pixel space
// and answers containment queries for the virtual cursor. The arena is a
// fixed-size slot table scanned linearly rather than a hashmap, following
// the small, bounded output count the daemon actually has to deal with.
package geometry

import "fmt"

// MaxOutputs bounds how many outputs the daemon can track simultaneously.
const MaxOutputs = 128

// Output is one physical display surface reported by the compositor.
type Output struct {
	RegistryName uint32
	X, Y         int32
	Width        int32
	Height       int32
	InitDone     bool
}

// Contains reports whether the global pixel (x, y) falls within this
// output. An output that hasn't finished receiving its geometry events
// never contains anything.
func (o *Output) Contains(x, y int32) bool {
	if !o.InitDone {
		return false
	}
	return x >= o.X && x < o.X+o.Width && y >= o.Y && y < o.Y+o.Height
}

// Bounds returns the output's rectangle as (x1, y1, x2, y2), x2/y2 exclusive.
func (o *Output) Bounds() (x1, y1, x2, y2 int32) {
	return o.X, o.Y, o.X + o.Width, o.Y + o.Height
}

// Geometry owns the arena of known outputs, indexed by compositor registry
// name. It answers "which output contains this pixel?" and its inverse.
type Geometry struct {
	slots [MaxOutputs]*Output
}

// New returns an empty output arena.
func New() *Geometry {
	return &Geometry{}
}

// Add inserts o into the first free slot.
func (g *Geometry) Add(o *Output) error {
	for i := range g.slots {
		if g.slots[i] == nil {
			g.slots[i] = o
			return nil
		}
	}
	return fmt.Errorf("geometry: no free output slot (max %d)", MaxOutputs)
}

// Remove drops the output with the given registry name, if present.
func (g *Geometry) Remove(registryName uint32) {
	for i, o := range g.slots {
		if o != nil && o.RegistryName == registryName {
			g.slots[i] = nil
			return
		}
	}
}

// ByRegistryName returns the output with the given registry name, or nil.
func (g *Geometry) ByRegistryName(registryName uint32) *Output {
	for _, o := range g.slots {
		if o != nil && o.RegistryName == registryName {
			return o
		}
	}
	return nil
}

// OutputAt returns the output containing global pixel (x, y), or nil if the
// pixel is a void.
func (g *Geometry) OutputAt(x, y int32) *Output {
	for _, o := range g.slots {
		if o != nil && o.Contains(x, y) {
			return o
		}
	}
	return nil
}

// Outputs returns every fully-initialized output, in slot order.
func (g *Geometry) Outputs() []*Output {
	out := make([]*Output, 0, MaxOutputs)
	for _, o := range g.slots {
		if o != nil && o.InitDone {
			out = append(out, o)
		}
	}
	return out
}

// First returns the first fully-initialized output in slot order, or nil if
// none exists. Used for the CursorWalker's recovery case.
func (g *Geometry) First() *Output {
	for _, o := range g.slots {
		if o != nil && o.InitDone {
			return o
		}
	}
	return nil
}
