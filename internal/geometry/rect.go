// Package geometry provides rectangle math shared by the enumerator,
// reserved-area registry, and overlap engine. All coordinates are in
// screen pixels with the origin at the top-left.
package geometry

// Rect represents a window or screen region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Area returns the rectangle's area in square pixels.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the intersection of r and other. The zero Rect is
// returned when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())

	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// IntersectionArea returns the overlap area of r and other in square pixels.
func (r Rect) IntersectionArea(other Rect) int {
	return r.Intersect(other).Area()
}

// Intersects reports whether r and other share any area.
func (r Rect) Intersects(other Rect) bool {
	return r.IntersectionArea(other) > 0
}

// Contains reports whether other lies fully within r.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// ClampTo returns r adjusted to lie fully within frame. Size is reduced
// only when r is larger than the frame on an axis.
func (r Rect) ClampTo(frame Rect) Rect {
	out := r

	if out.Width > frame.Width {
		out.Width = frame.Width
	}
	if out.Height > frame.Height {
		out.Height = frame.Height
	}

	if out.X < frame.X {
		out.X = frame.X
	}
	if out.Y < frame.Y {
		out.Y = frame.Y
	}
	if out.Right() > frame.Right() {
		out.X = frame.Right() - out.Width
	}
	if out.Bottom() > frame.Bottom() {
		out.Y = frame.Bottom() - out.Height
	}

	return out
}

// ApproxEqual reports whether r and other match within tol pixels on every
// edge. Used to re-locate windows across queries when no stable handle is
// available.
func (r Rect) ApproxEqual(other Rect, tol int) bool {
	return abs(r.X-other.X) <= tol &&
		abs(r.Y-other.Y) <= tol &&
		abs(r.Width-other.Width) <= tol &&
		abs(r.Height-other.Height) <= tol
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
