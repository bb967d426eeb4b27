package geometry

// Position is a pixel coordinate in global output space.
type Position struct {
	X, Y int32
}

// maxWalkSteps bounds the glide-and-restart loop. A real layout resolves in
// a handful of restarts; this is a correctness backstop, not a tuned limit.
const maxWalkSteps = 1 << 20

// Walker computes where the cursor actually ends up after a relative
// motion, walking the path pixel by pixel so it never crosses a void
// between outputs.
type Walker struct {
	geometry *Geometry
}

// NewWalker returns a Walker consulting g for output containment.
func NewWalker(g *Geometry) *Walker {
	return &Walker{geometry: g}
}

// Walk returns the final cursor position after moving from prev toward
// desired, clamped to stay within the union of known outputs. If prev is
// currently in a void (e.g. an output was just unplugged out from under
// the cursor), the walk restarts from the origin of the first known
// output. If no output is initialized at all, desired is returned
// unconstrained: there is nothing to validate against.
//
// The caller is responsible for flagging frame_pending on the outputs at
// both prev and the returned position; Walk only computes geometry.
func (w *Walker) Walk(prev, desired Position) Position {
	first := w.geometry.First()
	if first == nil {
		return desired
	}

	cur := prev
	if w.geometry.OutputAt(cur.X, cur.Y) == nil {
		cur = Position{X: first.X, Y: first.Y}
	}

	end := desired
	for i := 0; i < maxWalkSteps; i++ {
		if cur == end {
			return cur
		}

		next, advancedX, advancedY := stepToward(cur, end)
		if w.geometry.OutputAt(next.X, next.Y) != nil {
			cur = next
			continue
		}

		// next is a void. Glide along the edge of the axis that just
		// advanced, ties preferring the x-axis, and keep trying to make
		// progress toward the original destination on the other axis.
		glideX := advancedX
		if advancedX && advancedY {
			glideX = true
		}

		switch {
		case glideX && next.X > cur.X:
			cur = Position{X: next.X - 1, Y: cur.Y}
			end = Position{X: cur.X, Y: end.Y}
		case glideX && next.X < cur.X:
			cur = Position{X: next.X + 1, Y: cur.Y}
			end = Position{X: cur.X, Y: end.Y}
		case !glideX && next.Y > cur.Y:
			cur = Position{X: cur.X, Y: next.Y - 1}
			end = Position{X: end.X, Y: cur.Y}
		case !glideX && next.Y < cur.Y:
			cur = Position{X: cur.X, Y: next.Y + 1}
			end = Position{X: end.X, Y: cur.Y}
		default:
			// next == cur on the glide axis: no progress possible, stop here.
			return cur
		}
	}
	return cur
}

// stepToward returns the single next pixel on a Bresenham-equivalent path
// from cur to end, recomputed fresh from the remaining delta each call.
// Restarting the line on every glide (rather than threading an error
// accumulator through voids) is exactly the behavior the glide-and-restart
// algorithm wants.
func stepToward(cur, end Position) (next Position, advancedX, advancedY bool) {
	dx := end.X - cur.X
	dy := end.Y - cur.Y
	if dx == 0 && dy == 0 {
		return cur, false, false
	}

	adx, ady := abs32(dx), abs32(dy)
	next = cur

	if adx >= ady {
		next.X += sign32(dx)
		advancedX = true
		if ady > 0 && 2*ady >= adx {
			next.Y += sign32(dy)
			advancedY = true
		}
	} else {
		next.Y += sign32(dy)
		advancedY = true
		if adx > 0 && 2*adx >= ady {
			next.X += sign32(dx)
			advancedX = true
		}
	}
	return next, advancedX, advancedY
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign32(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
