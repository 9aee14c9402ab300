// Package overlap detects windows intruding into the bar's reserved
// screen strip and nudges or resizes them back out. Corrections are
// advisory cross-process writes: the owning application may ignore,
// partially honor, or race them, so every write is best-effort with
// independent position/size outcomes and a per-window cooldown guards
// against correction loops.
package overlap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/perch/internal/classify"
	"github.com/1broseidon/perch/internal/geometry"
	"github.com/1broseidon/perch/internal/platform"
	"github.com/1broseidon/perch/internal/reserved"
)

// Config tunes the scan cadence and correction thresholds. Zero values
// fall back to the defaults below.
type Config struct {
	// ScanInterval is the periodic scan cadence.
	ScanInterval time.Duration
	// MinScanGap drops trigger events arriving closer together than this.
	MinScanGap time.Duration
	// Cooldown is the minimum time between two corrections of the same
	// window.
	Cooldown time.Duration
	// MinOverlapArea filters imperceptible edge-grazing overlaps, in
	// square pixels.
	MinOverlapArea int
	// MinDelta is the smallest position/size change worth writing, in
	// pixels per edge.
	MinDelta int
	// MaxCorrections caps writes per scan.
	MaxCorrections int
	// MinWindowWidth/MinWindowHeight floor how far a correction may
	// shrink a window.
	MinWindowWidth  int
	MinWindowHeight int
	// AlphaFloor is the visibility threshold below which a window is not
	// considered actually on screen.
	AlphaFloor float64
}

func (c Config) withDefaults() Config {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 3 * time.Second
	}
	if c.MinScanGap <= 0 {
		c.MinScanGap = 100 * time.Millisecond
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 3 * time.Second
	}
	if c.MinOverlapArea <= 0 {
		c.MinOverlapArea = 100
	}
	if c.MinDelta <= 0 {
		c.MinDelta = 2
	}
	if c.MaxCorrections <= 0 {
		c.MaxCorrections = 3
	}
	if c.MinWindowWidth <= 0 {
		c.MinWindowWidth = 100
	}
	if c.MinWindowHeight <= 0 {
		c.MinWindowHeight = 100
	}
	if c.AlphaFloor <= 0 {
		c.AlphaFloor = 0.1
	}
	return c
}

// Engine runs the overlap scan loop. One logical event loop: timer ticks
// and external triggers feed the same rate-limited scan entry point, so
// scans never overlap each other.
type Engine struct {
	gw       platform.Gateway
	registry *reserved.Registry
	cfg      Config
	ownPID   int
	logger   *slog.Logger
	now      func() time.Time

	trigger chan struct{}

	mu         sync.Mutex
	lastScan   time.Time
	adjusted   map[platform.WindowID]time.Time
	permWarned bool
}

// NewEngine creates an overlap engine for the given gateway and registry.
// ownPID identifies the bar's own process, whose windows are never
// corrected.
func NewEngine(gw platform.Gateway, registry *reserved.Registry, ownPID int, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gw:       gw,
		registry: registry,
		cfg:      cfg.withDefaults(),
		ownPID:   ownPID,
		logger:   logger,
		now:      time.Now,
		trigger:  make(chan struct{}, 1),
		adjusted: make(map[platform.WindowID]time.Time),
	}
}

// Trigger requests a scan outside the periodic cadence, e.g. after a
// configuration or topology change. Non-blocking; coalesces with any
// pending trigger.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run drives the scan loop until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.ScanInterval)
	defer ticker.Stop()

	e.logger.Info("overlap engine started", "interval", e.cfg.ScanInterval)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("overlap engine stopped")
			return
		case <-ticker.C:
			e.Scan()
		case <-e.trigger:
			e.Scan()
		}
	}
}

// Scan performs one overlap pass: fetch the flat window list once,
// attribute each window to the display holding most of it, and correct
// significant intrusions into that display's reserved strip.
func (e *Engine) Scan() {
	now := e.now()

	e.mu.Lock()
	if now.Sub(e.lastScan) < e.cfg.MinScanGap {
		e.mu.Unlock()
		return
	}
	e.lastScan = now
	e.pruneLocked(now)
	e.mu.Unlock()

	if !e.gw.Permitted() {
		e.warnPermissionOnce()
		return
	}
	e.clearPermissionWarning()

	displays, err := e.gw.Displays()
	if err != nil {
		e.logger.Warn("display query failed, skipping scan", "error", err)
		return
	}

	windows, err := e.gw.ListWindows()
	if err != nil {
		e.logger.Warn("window list query failed, skipping scan", "error", err)
		return
	}

	corrections := 0
	for _, sw := range windows {
		if corrections >= e.cfg.MaxCorrections {
			e.logger.Debug("correction cap reached", "cap", e.cfg.MaxCorrections)
			break
		}
		if e.correct(sw, displays, now) {
			corrections++
		}
	}
}

// correct evaluates one window and applies a correction when warranted.
// Reports whether a write was attempted.
func (e *Engine) correct(sw platform.ServerWindow, displays []platform.Display, now time.Time) bool {
	if sw.PID == e.ownPID {
		return false
	}
	if sw.Layer != platform.LevelNormal {
		return false
	}
	if sw.Bounds.Width <= classify.MinWidth || sw.Bounds.Height <= classify.MinHeight {
		return false
	}
	if !sw.OnScreen || sw.Alpha < e.cfg.AlphaFloor {
		return false
	}

	display, ok := majorityDisplay(sw.Bounds, displays)
	if !ok {
		return false
	}

	area, ok := e.registry.Area(display.ID)
	if !ok {
		// Display disconnected since the registry last updated; drop
		// silently, the next topology event rebuilds the set.
		return false
	}

	overlap := sw.Bounds.IntersectionArea(area.Rect)
	if overlap < e.cfg.MinOverlapArea {
		return false
	}

	e.mu.Lock()
	if t, ok := e.adjusted[sw.ID]; ok && now.Sub(t) < e.cfg.Cooldown {
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	target := Corrective(sw.Bounds, display.Bounds, area, e.cfg.MinWindowWidth, e.cfg.MinWindowHeight)
	if target.ApproxEqual(sw.Bounds, e.cfg.MinDelta) {
		return false
	}

	// Record before writing: a slow or failed write must not turn into a
	// retry storm on the next scan.
	e.mu.Lock()
	e.adjusted[sw.ID] = now
	e.mu.Unlock()

	h, ok := e.gw.LocateWindow(sw.PID, sw.Bounds)
	if !ok {
		e.logger.Debug("window moved before correction could apply",
			"pid", sw.PID, "window", sw.ID)
		return true
	}

	if target.X != sw.Bounds.X || target.Y != sw.Bounds.Y {
		if err := e.gw.SetPosition(h, target.X, target.Y); err != nil {
			e.logger.Warn("position correction rejected",
				"pid", sw.PID, "window", sw.ID, "error", err)
		} else {
			e.logger.Info("window repositioned clear of bar",
				"pid", sw.PID, "window", sw.ID,
				"x", target.X, "y", target.Y, "overlap", overlap)
		}
	}
	if target.Width != sw.Bounds.Width || target.Height != sw.Bounds.Height {
		if err := e.gw.SetSize(h, target.Width, target.Height); err != nil {
			e.logger.Warn("size correction rejected",
				"pid", sw.PID, "window", sw.ID, "error", err)
		} else {
			e.logger.Info("window resized clear of bar",
				"pid", sw.PID, "window", sw.ID,
				"width", target.Width, "height", target.Height)
		}
	}

	return true
}

// majorityDisplay returns the display holding the largest share of the
// rectangle. Origin containment alone misattributes windows straddling a
// display edge.
func majorityDisplay(r geometry.Rect, displays []platform.Display) (platform.Display, bool) {
	var (
		best     platform.Display
		bestArea int
	)
	for _, d := range displays {
		if a := r.IntersectionArea(d.Bounds); a > bestArea {
			best = d
			bestArea = a
		}
	}
	return best, bestArea > 0
}

// pruneLocked drops adjustment records older than the cooldown. Caller
// holds e.mu.
func (e *Engine) pruneLocked(now time.Time) {
	for id, t := range e.adjusted {
		if now.Sub(t) >= e.cfg.Cooldown {
			delete(e.adjusted, id)
		}
	}
}

func (e *Engine) warnPermissionOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.permWarned {
		return
	}
	e.permWarned = true
	e.logger.Warn("window service access denied; grant perch access to the window system and restart scanning")
}

func (e *Engine) clearPermissionWarning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.permWarned {
		e.permWarned = false
		e.logger.Info("window service access restored")
	}
}
