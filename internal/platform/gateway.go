package platform

import "github.com/1broseidon/perch/internal/geometry"

// WindowID is a platform-neutral window identifier. It is unique enough
// within one owning process at one point in time; it is not guaranteed
// stable across enumeration passes.
type WindowID uint32

// Window z-order level classes, coarsest first. These mirror the window
// server's layer taxonomy: most application windows sit at LevelNormal,
// always-on-top utility panels at LevelFloating.
const (
	LevelNormal   = 0
	LevelFloating = 3
	LevelDock     = 20
	LevelOverlay  = 25
)

// Standard subroles reported for genuine user-facing windows.
const (
	SubroleStandard = "standard"
	SubroleDialog   = "dialog"
	SubroleUnknown  = "unknown"
)

// Handle references a live window element for a single query generation.
// Subrole is resolved cheaply at discovery time so callers can filter
// before paying for a full attribute resolution.
type Handle struct {
	ID      WindowID
	Subrole string
}

// Window is an immutable snapshot of one window's identity, geometry, and
// classification-relevant attributes. A new snapshot replaces the old one
// on every enumeration pass; nothing mutates a Window in place.
type Window struct {
	ID         WindowID
	PID        int
	AppID      string
	Title      string
	Role       string
	Subrole    string
	Bounds     geometry.Rect
	Level      int
	Minimized  bool
	Fullscreen bool
	OnScreen   bool
}

// ServerWindow is one entry of the window server's flat on-screen list.
// It covers windows of every process and carries the authoritative bounds
// plus visibility data the per-process sources do not report.
type ServerWindow struct {
	ID       WindowID
	PID      int
	Layer    int
	Alpha    float64
	OnScreen bool
	Bounds   geometry.Rect
}

// Display describes a connected physical display.
type Display struct {
	ID     int
	Name   string
	Bounds geometry.Rect
}

// Gateway abstracts the platform window/accessibility service. All reads
// return point-in-time snapshots; all writes are advisory and may be
// ignored or overridden by the owning application at any time.
type Gateway interface {
	// Permitted reports whether the window service grants us access.
	// When false, enumeration and scanning must be suspended.
	Permitted() bool

	// ListWindows returns the window server's flat on-screen window list
	// across all processes. One call serves a whole scan or enumeration
	// pass; callers must not issue it per window.
	ListWindows() ([]ServerWindow, error)

	// AppWindows returns the windows the accessibility tree reports for a
	// process. Windows on inactive virtual desktops may be missing; see
	// ProbeWindow.
	AppWindows(pid int) ([]Handle, error)

	// ProbeWindow resolves the index'th window element of a process,
	// including elements the primary AppWindows query does not report
	// (windows parked on other virtual desktops). Best-effort: a false
	// return means only that this index resolved to nothing.
	ProbeWindow(pid int, index int) (Handle, bool)

	// ResolveWindow reads the full attribute set for a window. A failure
	// drops only that window from the caller's batch.
	ResolveWindow(pid int, h Handle) (Window, error)

	// LocateWindow finds the live window of a process whose current bounds
	// approximately match the given rectangle. Needed before writes, since
	// no stable cross-query handle is guaranteed.
	LocateWindow(pid int, bounds geometry.Rect) (Handle, bool)

	// SetPosition and SetSize are independent best-effort writes. A
	// partial success (position honored, size rejected) is valid.
	SetPosition(h Handle, x, y int) error
	SetSize(h Handle, width, height int) error

	// Displays returns the currently connected displays.
	Displays() ([]Display, error)
}
