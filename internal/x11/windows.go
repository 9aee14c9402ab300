package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ListClients returns every managed top-level window in stacking order.
// Falls back to the unordered client list when the WM does not publish
// stacking.
func (c *Connection) ListClients() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err == nil && len(clients) > 0 {
		return clients, nil
	}
	return ewmh.ClientListGet(c.XUtil)
}

// WindowPID returns the owning process ID via _NET_WM_PID.
func (c *Connection) WindowPID(windowID xproto.Window) (int, error) {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window pid: %w", err)
	}
	return int(pid), nil
}

// WindowTitle returns the window title, preferring _NET_WM_NAME over the
// legacy ICCCM property.
func (c *Connection) WindowTitle(windowID xproto.Window) (string, error) {
	if name, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && name != "" {
		return name, nil
	}
	return icccm.WmNameGet(c.XUtil, windowID)
}

// WindowClass returns the WM_CLASS class name, the closest X11 analogue
// of an application bundle identifier.
func (c *Connection) WindowClass(windowID xproto.Window) (string, error) {
	class, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", fmt.Errorf("failed to get window class: %w", err)
	}
	return class.Class, nil
}

// WindowType returns the first _NET_WM_WINDOW_TYPE atom name. Windows
// with no type set are treated as normal per EWMH.
func (c *Connection) WindowType(windowID xproto.Window) string {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil || len(types) == 0 {
		return "_NET_WM_WINDOW_TYPE_NORMAL"
	}
	return types[0]
}

// WindowStates returns the _NET_WM_STATE atom names, or nil when unset.
func (c *Connection) WindowStates(windowID xproto.Window) []string {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}
	return states
}

// CurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WindowDesktop returns the desktop number a window is on. Returns -1 for
// "sticky" windows (visible on all desktops).
func (c *Connection) WindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return -1, nil
	}
	return int(desktop), nil
}

// WindowGeometry returns a window's bounds in root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get window geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate window coordinates: %w", err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// WindowRole returns the WM_WINDOW_ROLE property, or "window" when the
// application sets none.
func (c *Connection) WindowRole(windowID xproto.Window) string {
	role, err := xprop.PropValStr(xprop.GetProperty(c.XUtil, windowID, "WM_WINDOW_ROLE"))
	if err != nil || role == "" {
		return "window"
	}
	return role
}

// WindowOpacity returns the window's _NET_WM_WINDOW_OPACITY as a fraction
// in [0,1]. Windows without the property are fully opaque.
func (c *Connection) WindowOpacity(windowID xproto.Window) float64 {
	raw, err := xprop.PropValNum(xprop.GetProperty(c.XUtil, windowID, "_NET_WM_WINDOW_OPACITY"))
	if err != nil {
		return 1.0
	}
	return float64(raw) / float64(0xFFFFFFFF)
}

// MoveWindow moves a window to the given root coordinates. Maximized
// state is removed first, since WMs pin maximized windows in place.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) error {
	// Some windows don't support this; the move may still apply.
	_ = c.unmaximizeWindow(windowID)

	xwindow.New(c.XUtil, windowID).Move(x, y)
	return nil
}

// ResizeWindow resizes a window in place.
func (c *Connection) ResizeWindow(windowID xproto.Window, width, height int) error {
	_ = c.unmaximizeWindow(windowID)

	xwindow.New(c.XUtil, windowID).Resize(width, height)
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	// Get current window states
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	// Check if window is maximized
	hasMaxH := false
	hasMaxV := false

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" {
			hasMaxH = true
		}
		if state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			hasMaxV = true
		}
	}

	// Remove maximized states if present
	if hasMaxH {
		ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_HORZ")
	}
	if hasMaxV {
		ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_VERT")
	}

	return nil
}
