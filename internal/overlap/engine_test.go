package overlap

import (
	"testing"
	"time"

	"github.com/1broseidon/perch/internal/geometry"
	"github.com/1broseidon/perch/internal/platform"
	"github.com/1broseidon/perch/internal/reserved"
)

type move struct {
	id   platform.WindowID
	x, y int
}

type resize struct {
	id            platform.WindowID
	width, height int
}

type fakeGateway struct {
	displays  []platform.Display
	server    []platform.ServerWindow
	permitted bool
	locateOK  bool

	listCalls int
	moves     []move
	resizes   []resize
}

func (f *fakeGateway) Permitted() bool { return f.permitted }

func (f *fakeGateway) ListWindows() ([]platform.ServerWindow, error) {
	f.listCalls++
	return f.server, nil
}

func (f *fakeGateway) AppWindows(pid int) ([]platform.Handle, error) { return nil, nil }

func (f *fakeGateway) ProbeWindow(pid int, index int) (platform.Handle, bool) {
	return platform.Handle{}, false
}

func (f *fakeGateway) ResolveWindow(pid int, h platform.Handle) (platform.Window, error) {
	return platform.Window{}, nil
}

func (f *fakeGateway) LocateWindow(pid int, bounds geometry.Rect) (platform.Handle, bool) {
	if !f.locateOK {
		return platform.Handle{}, false
	}
	for _, sw := range f.server {
		if sw.PID == pid && sw.Bounds == bounds {
			return platform.Handle{ID: sw.ID}, true
		}
	}
	return platform.Handle{}, false
}

func (f *fakeGateway) SetPosition(h platform.Handle, x, y int) error {
	f.moves = append(f.moves, move{id: h.ID, x: x, y: y})
	return nil
}

func (f *fakeGateway) SetSize(h platform.Handle, width, height int) error {
	f.resizes = append(f.resizes, resize{id: h.ID, width: width, height: height})
	return nil
}

func (f *fakeGateway) Displays() ([]platform.Display, error) { return f.displays, nil }

func intruder(id platform.WindowID, bounds geometry.Rect) platform.ServerWindow {
	return platform.ServerWindow{
		ID: id, PID: 200, Layer: platform.LevelNormal,
		Alpha: 1.0, OnScreen: true, Bounds: bounds,
	}
}

// newTestEngine wires a gateway, a top-anchored 64px strip on a single
// 1920x1080 display, and a controllable clock.
func newTestEngine(gw *fakeGateway, cfg Config) (*Engine, *time.Time) {
	gw.permitted = true
	gw.locateOK = true
	gw.displays = []platform.Display{
		{ID: 1, Bounds: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
	}

	registry := reserved.NewRegistry()
	registry.Update(gw.displays, reserved.Config{
		Position: reserved.PositionTop, IconSize: 48, ChromePadding: 16,
	})

	if cfg.MinScanGap == 0 {
		cfg.MinScanGap = time.Millisecond
	}

	e := NewEngine(gw, registry, 100, cfg, nil)
	now := time.Unix(1000, 0)
	e.now = func() time.Time { return now }
	return e, &now
}

func TestScan_CorrectsIntrudingWindow(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			intruder(1, geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}),
		},
	}
	e, _ := newTestEngine(gw, Config{})

	e.Scan()

	if len(gw.moves) != 1 {
		t.Fatalf("expected 1 position write, got %v", gw.moves)
	}
	if got, want := gw.moves[0], (move{id: 1, x: 100, y: 64}); got != want {
		t.Fatalf("position write = %+v, want %+v", got, want)
	}
	if len(gw.resizes) != 0 {
		t.Fatalf("expected no size write for a pure translation, got %v", gw.resizes)
	}
}

func TestScan_CooldownSuppressesRepeatCorrection(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			intruder(1, geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}),
		},
	}
	e, now := newTestEngine(gw, Config{Cooldown: 3 * time.Second})

	e.Scan()
	// The application snapped its window back; the next scan sees the
	// same intrusion within the cooldown.
	*now = now.Add(500 * time.Millisecond)
	e.Scan()

	if len(gw.moves) != 1 {
		t.Fatalf("expected cooldown to suppress the second write, got %v", gw.moves)
	}

	// Past the cooldown the correction applies again.
	*now = now.Add(3 * time.Second)
	e.Scan()
	if len(gw.moves) != 2 {
		t.Fatalf("expected correction after cooldown, got %v", gw.moves)
	}
}

func TestScan_BelowOverlapThresholdIgnored(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			// 800x1 strip graze: 800 square pixels.
			intruder(1, geometry.Rect{X: 100, Y: 63, Width: 800, Height: 600}),
		},
	}
	e, _ := newTestEngine(gw, Config{MinOverlapArea: 1000})

	e.Scan()

	if len(gw.moves) != 0 || len(gw.resizes) != 0 {
		t.Fatalf("expected no writes below the overlap threshold, got %v %v", gw.moves, gw.resizes)
	}
}

func TestScan_MinDeltaSkipsMicroAdjustment(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			// Target differs by 1px, under the 2px delta floor.
			intruder(1, geometry.Rect{X: 100, Y: 63, Width: 800, Height: 600}),
		},
	}
	e, _ := newTestEngine(gw, Config{MinDelta: 2})

	e.Scan()

	if len(gw.moves) != 0 {
		t.Fatalf("expected sub-delta correction to be skipped, got %v", gw.moves)
	}
}

func TestScan_CorrectionCapPerScan(t *testing.T) {
	var server []platform.ServerWindow
	for i := 0; i < 5; i++ {
		server = append(server, intruder(platform.WindowID(i+1),
			geometry.Rect{X: i * 300, Y: 0, Width: 280, Height: 600}))
	}
	gw := &fakeGateway{server: server}
	e, now := newTestEngine(gw, Config{MaxCorrections: 3})

	e.Scan()
	if len(gw.moves) != 3 {
		t.Fatalf("expected the per-scan cap to hold at 3, got %d", len(gw.moves))
	}

	// The remaining intrusions are picked up by a later scan.
	*now = now.Add(time.Second)
	e.Scan()
	if len(gw.moves) != 5 {
		t.Fatalf("expected remaining windows corrected next scan, got %d", len(gw.moves))
	}
}

func TestScan_RateLimitDropsBackToBackScans(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			intruder(1, geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}),
		},
	}
	e, _ := newTestEngine(gw, Config{MinScanGap: 100 * time.Millisecond})

	e.Scan()
	e.Scan()

	if gw.listCalls != 1 {
		t.Fatalf("expected second scan to be dropped by the gap limit, got %d list calls", gw.listCalls)
	}
}

func TestScan_SkipsExemptWindows(t *testing.T) {
	bounds := geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}

	own := intruder(1, bounds)
	own.PID = 100

	floating := intruder(2, bounds)
	floating.Layer = platform.LevelFloating

	invisible := intruder(3, bounds)
	invisible.Alpha = 0.05

	offscreen := intruder(4, bounds)
	offscreen.OnScreen = false

	tooltip := intruder(5, geometry.Rect{X: 100, Y: 0, Width: 90, Height: 40})

	gw := &fakeGateway{server: []platform.ServerWindow{own, floating, invisible, offscreen, tooltip}}
	e, _ := newTestEngine(gw, Config{})

	e.Scan()

	if len(gw.moves) != 0 || len(gw.resizes) != 0 {
		t.Fatalf("expected all exempt windows skipped, got %v %v", gw.moves, gw.resizes)
	}
}

func TestScan_PermissionGateSuspendsScanning(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			intruder(1, geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}),
		},
	}
	e, now := newTestEngine(gw, Config{})
	gw.permitted = false

	e.Scan()
	if gw.listCalls != 0 {
		t.Fatal("expected no queries while access is denied")
	}

	gw.permitted = true
	*now = now.Add(time.Second)
	e.Scan()
	if len(gw.moves) != 1 {
		t.Fatalf("expected scanning to resume once access returns, got %v", gw.moves)
	}
}

func TestScan_RecordsBeforeWrite(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			intruder(1, geometry.Rect{X: 100, Y: 0, Width: 800, Height: 600}),
		},
	}
	e, now := newTestEngine(gw, Config{Cooldown: 3 * time.Second})
	gw.locateOK = false

	// The window vanishes between snapshot and write. The attempt still
	// counts toward the cooldown so the next scan does not retry.
	e.Scan()
	*now = now.Add(time.Second)
	e.Scan()

	if gw.listCalls != 2 {
		t.Fatalf("expected both scans to run, got %d list calls", gw.listCalls)
	}
	if len(gw.moves) != 0 {
		t.Fatalf("expected no writes when the window cannot be located, got %v", gw.moves)
	}
}

func TestScan_StraddlingWindowUsesMajorityDisplay(t *testing.T) {
	gw := &fakeGateway{
		server: []platform.ServerWindow{
			// Mostly on display 2, nose poking into display 1's strip
			// region does not matter; display 2 has its own strip.
			intruder(1, geometry.Rect{X: 1800, Y: 0, Width: 800, Height: 600}),
		},
	}
	e, _ := newTestEngine(gw, Config{})
	gw.displays = append(gw.displays, platform.Display{
		ID: 2, Bounds: geometry.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080},
	})
	e.registry.Update(gw.displays, reserved.Config{
		Position: reserved.PositionTop, IconSize: 48, ChromePadding: 16,
	})

	e.Scan()

	if len(gw.moves) != 1 {
		t.Fatalf("expected 1 write, got %v", gw.moves)
	}
	if gw.moves[0].y != 64 {
		t.Fatalf("expected correction below display 2's strip, got %+v", gw.moves[0])
	}
}
