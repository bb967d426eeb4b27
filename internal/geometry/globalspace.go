package geometry

import (
	"fmt"
	"sort"
)

// GlobalSpace is the bounding box of every known output, in the same
// coordinate system the compositor reports output positions in.
type GlobalSpace struct {
	X, Y          int32
	Width, Height int32
}

// Contains reports whether (x, y) falls within the aggregate bounding box.
// Note this is weaker than being contained by an actual output: pixels in
// a void between outputs still satisfy Contains.
func (gs *GlobalSpace) Contains(x, y int32) bool {
	return x >= gs.X && x < gs.X+gs.Width && y >= gs.Y && y < gs.Y+gs.Height
}

// Compute derives the GlobalSpace from every initialized output in g. When
// gapTolerant is false, it additionally verifies the outputs are
// edge-connected (their union leaves no void inside the bounding box) and
// returns an error otherwise, since the CursorWalker's glide logic assumes
// any void is reachable only by walking off the side of an output, never by
// landing in an interior hole.
func Compute(g *Geometry, gapTolerant bool) (*GlobalSpace, error) {
	outputs := g.Outputs()
	if len(outputs) == 0 {
		return &GlobalSpace{}, nil
	}

	minX, minY, maxX, maxY := outputs[0].Bounds()
	for _, o := range outputs[1:] {
		x1, y1, x2, y2 := o.Bounds()
		if x1 < minX {
			minX = x1
		}
		if y1 < minY {
			minY = y1
		}
		if x2 > maxX {
			maxX = x2
		}
		if y2 > maxY {
			maxY = y2
		}
	}

	gs := &GlobalSpace{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}

	if !gapTolerant && hasVoid(outputs, gs) {
		return nil, fmt.Errorf("geometry: output layout has an interior void, not edge-connected")
	}

	return gs, nil
}

// hasVoid checks every rectilinear cell induced by the outputs' edges for
// coverage. Coordinate compression keeps this cheap even for a full desk of
// monitors: boundaries come only from output edges, never from a pixel grid.
func hasVoid(outputs []*Output, gs *GlobalSpace) bool {
	if gs.Width <= 0 || gs.Height <= 0 {
		return false
	}

	xset := map[int32]bool{}
	yset := map[int32]bool{}
	for _, o := range outputs {
		x1, y1, x2, y2 := o.Bounds()
		xset[x1] = true
		xset[x2] = true
		yset[y1] = true
		yset[y2] = true
	}

	xs := sortedKeys(xset)
	ys := sortedKeys(yset)

	for i := 0; i+1 < len(xs); i++ {
		midX := (xs[i] + xs[i+1]) / 2
		if midX < gs.X || midX >= gs.X+gs.Width {
			continue
		}
		for j := 0; j+1 < len(ys); j++ {
			midY := (ys[j] + ys[j+1]) / 2
			if midY < gs.Y || midY >= gs.Y+gs.Height {
				continue
			}
			covered := false
			for _, o := range outputs {
				if o.Contains(midX, midY) {
					covered = true
					break
				}
			}
			if !covered {
				return true
			}
		}
	}
	return false
}

func sortedKeys(m map[int32]bool) []int32 {
	out := make([]int32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
