// Package reserved computes and tracks the screen strip the bar occupies
// on each connected display. Other applications' windows must stay out of
// these rectangles; the overlap engine reads them on every scan.
package reserved

import (
	"fmt"
	"sync"

	"github.com/1broseidon/perch/internal/geometry"
	"github.com/1broseidon/perch/internal/platform"
)

// Position is the screen edge the bar is anchored to.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
)

// Valid reports whether p names a known edge.
func (p Position) Valid() bool {
	switch p {
	case PositionTop, PositionBottom, PositionLeft, PositionRight:
		return true
	}
	return false
}

// Horizontal reports whether the bar spans the display width.
func (p Position) Horizontal() bool {
	return p == PositionTop || p == PositionBottom
}

// Config holds the bar dimensions the reserved strip derives from.
type Config struct {
	Position Position
	// IconSize is the configured icon edge length in pixels.
	IconSize int
	// ChromePadding is the fixed chrome added to the icon size to form
	// the strip thickness.
	ChromePadding int
	// EdgePadding is left free at both ends of the strip.
	EdgePadding int
}

// Thickness returns the strip depth perpendicular to the anchored edge.
func (c Config) Thickness() int {
	return c.IconSize + c.ChromePadding
}

// Area is the reserved rectangle of one display.
type Area struct {
	DisplayID int
	Rect      geometry.Rect
	Position  Position
}

// Compute returns the reserved rectangle for one display. Pure geometry:
// identical inputs always yield identical output.
func Compute(d platform.Display, cfg Config) Area {
	b := d.Bounds
	thickness := cfg.Thickness()
	pad := cfg.EdgePadding

	var r geometry.Rect
	switch cfg.Position {
	case PositionTop:
		r = geometry.Rect{X: b.X + pad, Y: b.Y, Width: b.Width - 2*pad, Height: thickness}
	case PositionBottom:
		r = geometry.Rect{X: b.X + pad, Y: b.Bottom() - thickness, Width: b.Width - 2*pad, Height: thickness}
	case PositionLeft:
		r = geometry.Rect{X: b.X, Y: b.Y + pad, Width: thickness, Height: b.Height - 2*pad}
	case PositionRight:
		r = geometry.Rect{X: b.Right() - thickness, Y: b.Y + pad, Width: thickness, Height: b.Height - 2*pad}
	}

	return Area{DisplayID: d.ID, Rect: r, Position: cfg.Position}
}

// Registry holds exactly one Area per currently connected display. Update
// replaces the whole set, dropping areas for disconnected displays.
type Registry struct {
	mu    sync.RWMutex
	areas map[int]Area
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{areas: make(map[int]Area)}
}

// Update recomputes the reserved rectangle for every given display and
// drops entries for displays no longer present. Called whenever bar
// configuration or screen topology changes.
func (r *Registry) Update(displays []platform.Display, cfg Config) {
	areas := make(map[int]Area, len(displays))
	for _, d := range displays {
		areas[d.ID] = Compute(d, cfg)
	}

	r.mu.Lock()
	r.areas = areas
	r.mu.Unlock()
}

// Area returns the reserved rectangle of a display.
func (r *Registry) Area(displayID int) (Area, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.areas[displayID]
	return a, ok
}

// Areas returns the current reserved rectangles, one per display.
func (r *Registry) Areas() []Area {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Area, 0, len(r.areas))
	for _, a := range r.areas {
		out = append(out, a)
	}
	return out
}

// Validate checks a Config for use at load time.
func (c Config) Validate() error {
	if !c.Position.Valid() {
		return fmt.Errorf("invalid bar position %q", c.Position)
	}
	if c.IconSize <= 0 {
		return fmt.Errorf("icon_size must be positive, got %d", c.IconSize)
	}
	if c.ChromePadding < 0 || c.EdgePadding < 0 {
		return fmt.Errorf("paddings must be non-negative")
	}
	return nil
}
