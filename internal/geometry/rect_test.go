package geometry

import "testing"

func TestIntersectionArea(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want int
	}{
		{
			name: "full overlap",
			a:    Rect{X: 0, Y: 0, Width: 100, Height: 100},
			b:    Rect{X: 0, Y: 0, Width: 100, Height: 100},
			want: 10000,
		},
		{
			name: "partial overlap",
			a:    Rect{X: 0, Y: 0, Width: 100, Height: 100},
			b:    Rect{X: 50, Y: 50, Width: 100, Height: 100},
			want: 2500,
		},
		{
			name: "edge touching is not overlap",
			a:    Rect{X: 0, Y: 0, Width: 100, Height: 100},
			b:    Rect{X: 100, Y: 0, Width: 100, Height: 100},
			want: 0,
		},
		{
			name: "disjoint",
			a:    Rect{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rect{X: 500, Y: 500, Width: 10, Height: 10},
			want: 0,
		},
		{
			name: "window grazing a bar strip",
			a:    Rect{X: 100, Y: 63, Width: 800, Height: 600},
			b:    Rect{X: 0, Y: 0, Width: 1920, Height: 64},
			want: 800,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IntersectionArea(tt.b); got != tt.want {
				t.Fatalf("IntersectionArea() = %d, want %d", got, tt.want)
			}
			// Symmetric by definition.
			if got := tt.b.IntersectionArea(tt.a); got != tt.want {
				t.Fatalf("IntersectionArea() reversed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClampTo(t *testing.T) {
	frame := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{
			name: "already inside",
			in:   Rect{X: 100, Y: 100, Width: 800, Height: 600},
			want: Rect{X: 100, Y: 100, Width: 800, Height: 600},
		},
		{
			name: "pushed past bottom",
			in:   Rect{X: 100, Y: 900, Width: 800, Height: 600},
			want: Rect{X: 100, Y: 480, Width: 800, Height: 600},
		},
		{
			name: "negative origin",
			in:   Rect{X: -50, Y: -20, Width: 800, Height: 600},
			want: Rect{X: 0, Y: 0, Width: 800, Height: 600},
		},
		{
			name: "larger than frame shrinks",
			in:   Rect{X: 0, Y: 0, Width: 2500, Height: 600},
			want: Rect{X: 0, Y: 0, Width: 1920, Height: 600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ClampTo(frame)
			if got != tt.want {
				t.Fatalf("ClampTo() = %+v, want %+v", got, tt.want)
			}
			if !frame.Contains(got) {
				t.Fatalf("ClampTo() result %+v escapes frame", got)
			}
		})
	}
}

func TestApproxEqual(t *testing.T) {
	a := Rect{X: 100, Y: 200, Width: 800, Height: 600}

	if !a.ApproxEqual(Rect{X: 102, Y: 198, Width: 801, Height: 600}, 4) {
		t.Fatal("expected rects within tolerance to match")
	}
	if a.ApproxEqual(Rect{X: 110, Y: 200, Width: 800, Height: 600}, 4) {
		t.Fatal("expected rects beyond tolerance to differ")
	}
}

func TestEmptyAndArea(t *testing.T) {
	if !(Rect{}).Empty() {
		t.Fatal("zero rect should be empty")
	}
	if (Rect{Width: -5, Height: 10}).Area() != 0 {
		t.Fatal("negative width rect should have zero area")
	}
}
