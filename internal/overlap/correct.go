package overlap

import (
	"github.com/1broseidon/perch/internal/geometry"
	"github.com/1broseidon/perch/internal/reserved"
)

// Corrective computes the rectangle a window should move to so it clears
// the reserved strip. The window is translated along the axis
// perpendicular to the bar edge; when the remaining free space cannot
// hold its current size it is shrunk to fit, never below the given
// minimums. The result is clamped to the display frame, so when the
// minimum-size floor wins, residual overlap with the strip may remain.
func Corrective(win, frame geometry.Rect, area reserved.Area, minWidth, minHeight int) geometry.Rect {
	out := win

	switch area.Position {
	case reserved.PositionTop:
		free := frame.Bottom() - area.Rect.Bottom()
		out.Y = area.Rect.Bottom()
		if out.Height > free {
			out.Height = max(free, minHeight)
		}

	case reserved.PositionBottom:
		free := area.Rect.Y - frame.Y
		if out.Height > free {
			out.Height = max(free, minHeight)
		}
		out.Y = area.Rect.Y - out.Height

	case reserved.PositionLeft:
		free := frame.Right() - area.Rect.Right()
		out.X = area.Rect.Right()
		if out.Width > free {
			out.Width = max(free, minWidth)
		}

	case reserved.PositionRight:
		free := area.Rect.X - frame.X
		if out.Width > free {
			out.Width = max(free, minWidth)
		}
		out.X = area.Rect.X - out.Width
	}

	return out.ClampTo(frame)
}
