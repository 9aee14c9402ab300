package overlap

import (
	"testing"

	"github.com/1broseidon/perch/internal/geometry"
	"github.com/1broseidon/perch/internal/reserved"
)

var frame = geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func topArea(thickness int) reserved.Area {
	return reserved.Area{
		DisplayID: 1,
		Position:  reserved.PositionTop,
		Rect:      geometry.Rect{X: 0, Y: 0, Width: 1920, Height: thickness},
	}
}

func TestCorrective_TranslateClearOfTopStrip(t *testing.T) {
	win := geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}

	got := Corrective(win, frame, topArea(64), 100, 100)
	want := geometry.Rect{X: 100, Y: 64, Width: 800, Height: 600}
	if got != want {
		t.Fatalf("Corrective = %+v, want %+v", got, want)
	}
}

func TestCorrective_ShrinkWhenTranslationWouldOverflow(t *testing.T) {
	// Translating a 1060-tall window below a 64px strip would overflow a
	// 1080-tall display, so the height gives way.
	win := geometry.Rect{X: 100, Y: 0, Width: 800, Height: 1060}

	got := Corrective(win, frame, topArea(64), 100, 100)
	want := geometry.Rect{X: 100, Y: 64, Width: 800, Height: 1016}
	if got != want {
		t.Fatalf("Corrective = %+v, want %+v", got, want)
	}
}

func TestCorrective_MinimumSizeFloorLeavesResidualOverlap(t *testing.T) {
	// An absurdly deep strip leaves only 80px of free space, less than
	// the 100px minimum. The floor wins and the clamped result still
	// touches the strip.
	area := topArea(1000)
	win := geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}

	got := Corrective(win, frame, area, 100, 100)
	if got.Height != 100 {
		t.Fatalf("expected height floored at 100, got %d", got.Height)
	}
	if !frame.Contains(got) {
		t.Fatalf("corrected rect %+v escapes the display frame", got)
	}
	if got.IntersectionArea(area.Rect) == 0 {
		t.Fatal("expected residual overlap when the size floor wins")
	}
}

func TestCorrective_BottomStrip(t *testing.T) {
	area := reserved.Area{
		DisplayID: 1,
		Position:  reserved.PositionBottom,
		Rect:      geometry.Rect{X: 0, Y: 1016, Width: 1920, Height: 64},
	}
	win := geometry.Rect{X: 100, Y: 600, Width: 800, Height: 600}

	got := Corrective(win, frame, area, 100, 100)
	want := geometry.Rect{X: 100, Y: 416, Width: 800, Height: 600}
	if got != want {
		t.Fatalf("Corrective = %+v, want %+v", got, want)
	}
	if got.IntersectionArea(area.Rect) != 0 {
		t.Fatal("corrected rect still overlaps the strip")
	}
}

func TestCorrective_SideStrips(t *testing.T) {
	left := reserved.Area{
		DisplayID: 1,
		Position:  reserved.PositionLeft,
		Rect:      geometry.Rect{X: 0, Y: 0, Width: 64, Height: 1080},
	}
	win := geometry.Rect{X: 0, Y: 100, Width: 800, Height: 600}
	if got, want := Corrective(win, frame, left, 100, 100), (geometry.Rect{X: 64, Y: 100, Width: 800, Height: 600}); got != want {
		t.Fatalf("left Corrective = %+v, want %+v", got, want)
	}

	right := reserved.Area{
		DisplayID: 1,
		Position:  reserved.PositionRight,
		Rect:      geometry.Rect{X: 1856, Y: 0, Width: 64, Height: 1080},
	}
	win = geometry.Rect{X: 1200, Y: 100, Width: 800, Height: 600}
	if got, want := Corrective(win, frame, right, 100, 100), (geometry.Rect{X: 1056, Y: 100, Width: 800, Height: 600}); got != want {
		t.Fatalf("right Corrective = %+v, want %+v", got, want)
	}
}

func TestCorrective_Idempotent(t *testing.T) {
	win := geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}
	area := topArea(64)

	once := Corrective(win, frame, area, 100, 100)
	twice := Corrective(once, frame, area, 100, 100)
	if once != twice {
		t.Fatalf("correction not idempotent: %+v then %+v", once, twice)
	}
}
