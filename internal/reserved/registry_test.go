package reserved

import (
	"testing"

	"github.com/1broseidon/perch/internal/geometry"
	"github.com/1broseidon/perch/internal/platform"
)

var display = platform.Display{
	ID:     1,
	Name:   "eDP-1",
	Bounds: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
}

func TestCompute_EveryPosition(t *testing.T) {
	cfg := Config{IconSize: 48, ChromePadding: 16}

	tests := []struct {
		pos  Position
		want geometry.Rect
	}{
		{PositionTop, geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 64}},
		{PositionBottom, geometry.Rect{X: 0, Y: 1016, Width: 1920, Height: 64}},
		{PositionLeft, geometry.Rect{X: 0, Y: 0, Width: 64, Height: 1080}},
		{PositionRight, geometry.Rect{X: 1856, Y: 0, Width: 64, Height: 1080}},
	}

	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			cfg.Position = tt.pos
			a := Compute(display, cfg)
			if a.Rect != tt.want {
				t.Fatalf("Compute(%s) = %+v, want %+v", tt.pos, a.Rect, tt.want)
			}
			if a.DisplayID != display.ID || a.Position != tt.pos {
				t.Fatalf("Compute(%s) metadata = %+v", tt.pos, a)
			}
		})
	}
}

func TestCompute_EdgePadding(t *testing.T) {
	cfg := Config{Position: PositionTop, IconSize: 48, ChromePadding: 16, EdgePadding: 10}

	a := Compute(display, cfg)
	want := geometry.Rect{X: 10, Y: 0, Width: 1900, Height: 64}
	if a.Rect != want {
		t.Fatalf("Compute with edge padding = %+v, want %+v", a.Rect, want)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	cfg := Config{Position: PositionBottom, IconSize: 32, ChromePadding: 8, EdgePadding: 4}

	first := Compute(display, cfg)
	for i := 0; i < 10; i++ {
		if got := Compute(display, cfg); got != first {
			t.Fatalf("Compute diverged on identical inputs: %+v vs %+v", got, first)
		}
	}
}

func TestCompute_OffsetSecondaryDisplay(t *testing.T) {
	secondary := platform.Display{
		ID:     2,
		Bounds: geometry.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	cfg := Config{Position: PositionTop, IconSize: 48, ChromePadding: 16}

	a := Compute(secondary, cfg)
	want := geometry.Rect{X: 1920, Y: 0, Width: 2560, Height: 64}
	if a.Rect != want {
		t.Fatalf("Compute on offset display = %+v, want %+v", a.Rect, want)
	}
}

func TestRegistry_UpdateDropsDisconnected(t *testing.T) {
	r := NewRegistry()
	cfg := Config{Position: PositionTop, IconSize: 48, ChromePadding: 16}

	secondary := platform.Display{ID: 2, Bounds: geometry.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}}
	r.Update([]platform.Display{display, secondary}, cfg)

	if len(r.Areas()) != 2 {
		t.Fatalf("expected one area per display, got %d", len(r.Areas()))
	}

	// Display 2 disconnects.
	r.Update([]platform.Display{display}, cfg)

	if _, ok := r.Area(2); ok {
		t.Fatal("expected disconnected display's area to be dropped")
	}
	if _, ok := r.Area(1); !ok {
		t.Fatal("expected surviving display's area to remain")
	}
}

func TestConfigValidate(t *testing.T) {
	good := Config{Position: PositionTop, IconSize: 48}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := []Config{
		{Position: "middle", IconSize: 48},
		{Position: PositionTop, IconSize: 0},
		{Position: PositionTop, IconSize: 48, EdgePadding: -1},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, cfg)
		}
	}
}
