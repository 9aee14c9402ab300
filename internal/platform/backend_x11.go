//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/perch/internal/geometry"
	"github.com/1broseidon/perch/internal/x11"
)

// locateTolerance is the per-edge slack when re-locating a window by
// bounds between queries.
const locateTolerance = 4

// X11Gateway implements Gateway over an X11 connection.
type X11Gateway struct {
	conn *x11.Connection
}

var _ Gateway = (*X11Gateway)(nil)

// NewX11Gateway wraps an existing X11 connection.
func NewX11Gateway(conn *x11.Connection) *X11Gateway {
	return &X11Gateway{conn: conn}
}

// NewX11GatewayFromDisplay opens a fresh X11 connection.
func NewX11GatewayFromDisplay() (*X11Gateway, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Gateway{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (g *X11Gateway) Disconnect() {
	if g != nil && g.conn != nil {
		g.conn.Close()
	}
}

// Permitted reports whether the X server still answers queries.
func (g *X11Gateway) Permitted() bool {
	return g.conn.Alive()
}

// ListWindows returns the flat managed-window list with layer, opacity,
// and visibility data.
func (g *X11Gateway) ListWindows() ([]ServerWindow, error) {
	clients, err := g.conn.ListClients()
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	current, err := g.conn.CurrentDesktop()
	if err != nil {
		current = 0
	}

	windows := make([]ServerWindow, 0, len(clients))
	for _, win := range clients {
		x, y, w, h, err := g.conn.WindowGeometry(win)
		if err != nil {
			// Window vanished between the list and the query.
			continue
		}

		pid, err := g.conn.WindowPID(win)
		if err != nil {
			pid = 0
		}

		states := g.conn.WindowStates(win)
		desktop, err := g.conn.WindowDesktop(win)
		if err != nil {
			desktop = current
		}

		windows = append(windows, ServerWindow{
			ID:       WindowID(win),
			PID:      pid,
			Layer:    levelFor(g.conn.WindowType(win), states),
			Alpha:    g.conn.WindowOpacity(win),
			OnScreen: onDesktop(desktop, current) && !hasState(states, "_NET_WM_STATE_HIDDEN"),
			Bounds:   geometry.Rect{X: x, Y: y, Width: w, Height: h},
		})
	}

	return windows, nil
}

// AppWindows returns the windows of pid on the active desktop. Windows
// parked on inactive desktops are deliberately absent; ProbeWindow
// recovers them.
func (g *X11Gateway) AppWindows(pid int) ([]Handle, error) {
	clients, err := g.conn.ListClients()
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	current, err := g.conn.CurrentDesktop()
	if err != nil {
		current = 0
	}

	var handles []Handle
	for _, win := range clients {
		wpid, err := g.conn.WindowPID(win)
		if err != nil || wpid != pid {
			continue
		}
		desktop, err := g.conn.WindowDesktop(win)
		if err != nil || !onDesktop(desktop, current) {
			continue
		}
		handles = append(handles, Handle{
			ID:      WindowID(win),
			Subrole: subroleFor(g.conn.WindowType(win)),
		})
	}
	return handles, nil
}

// ProbeWindow resolves the index'th entry of the full client list,
// including windows on inactive virtual desktops that AppWindows omits.
// The index space is a bounded search heuristic, not a stable addressing
// scheme.
func (g *X11Gateway) ProbeWindow(pid int, index int) (Handle, bool) {
	clients, err := g.conn.ListClients()
	if err != nil || index < 0 || index >= len(clients) {
		return Handle{}, false
	}

	win := clients[index]
	wpid, err := g.conn.WindowPID(win)
	if err != nil || wpid != pid {
		return Handle{}, false
	}

	return Handle{
		ID:      WindowID(win),
		Subrole: subroleFor(g.conn.WindowType(win)),
	}, true
}

// ResolveWindow reads the full attribute snapshot for a window.
func (g *X11Gateway) ResolveWindow(pid int, h Handle) (Window, error) {
	win := xproto.Window(h.ID)

	x, y, w, ht, err := g.conn.WindowGeometry(win)
	if err != nil {
		return Window{}, fmt.Errorf("resolve bounds for window %d: %w", h.ID, err)
	}

	title, err := g.conn.WindowTitle(win)
	if err != nil {
		title = ""
	}
	appID, err := g.conn.WindowClass(win)
	if err != nil {
		appID = ""
	}

	current, err := g.conn.CurrentDesktop()
	if err != nil {
		current = 0
	}
	desktop, err := g.conn.WindowDesktop(win)
	if err != nil {
		desktop = current
	}

	states := g.conn.WindowStates(win)

	return Window{
		ID:         h.ID,
		PID:        pid,
		AppID:      appID,
		Title:      title,
		Role:       g.conn.WindowRole(win),
		Subrole:    subroleFor(g.conn.WindowType(win)),
		Bounds:     geometry.Rect{X: x, Y: y, Width: w, Height: ht},
		Level:      levelFor(g.conn.WindowType(win), states),
		Minimized:  hasState(states, "_NET_WM_STATE_HIDDEN"),
		Fullscreen: hasState(states, "_NET_WM_STATE_FULLSCREEN"),
		OnScreen:   onDesktop(desktop, current) && !hasState(states, "_NET_WM_STATE_HIDDEN"),
	}, nil
}

// LocateWindow finds the live window of pid whose bounds approximately
// match the given rectangle.
func (g *X11Gateway) LocateWindow(pid int, bounds geometry.Rect) (Handle, bool) {
	clients, err := g.conn.ListClients()
	if err != nil {
		return Handle{}, false
	}

	for _, win := range clients {
		wpid, err := g.conn.WindowPID(win)
		if err != nil || wpid != pid {
			continue
		}
		x, y, w, h, err := g.conn.WindowGeometry(win)
		if err != nil {
			continue
		}
		current := geometry.Rect{X: x, Y: y, Width: w, Height: h}
		if current.ApproxEqual(bounds, locateTolerance) {
			return Handle{ID: WindowID(win), Subrole: subroleFor(g.conn.WindowType(win))}, true
		}
	}
	return Handle{}, false
}

// SetPosition moves a window. Best-effort: the WM or owning application
// may reject or rework the request.
func (g *X11Gateway) SetPosition(h Handle, x, y int) error {
	return g.conn.MoveWindow(xproto.Window(h.ID), x, y)
}

// SetSize resizes a window. A rejected resize does not undo a previously
// honored move.
func (g *X11Gateway) SetSize(h Handle, width, height int) error {
	return g.conn.ResizeWindow(xproto.Window(h.ID), width, height)
}

// Displays returns the connected displays via RandR.
func (g *X11Gateway) Displays() ([]Display, error) {
	monitors, err := g.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: geometry.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		})
	}
	return displays, nil
}

// levelFor maps EWMH window types onto the coarse z-order classes the
// classifier works with. A normal-type window pinned above others counts
// as floating.
func levelFor(windowType string, states []string) int {
	switch windowType {
	case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
		if hasState(states, "_NET_WM_STATE_ABOVE") {
			return LevelFloating
		}
		return LevelNormal
	case "_NET_WM_WINDOW_TYPE_UTILITY", "_NET_WM_WINDOW_TYPE_TOOLBAR":
		return LevelFloating
	case "_NET_WM_WINDOW_TYPE_DOCK", "_NET_WM_WINDOW_TYPE_DESKTOP":
		return LevelDock
	default:
		// Splash screens, notifications, menus, tooltips.
		return LevelOverlay
	}
}

func subroleFor(windowType string) string {
	switch windowType {
	case "_NET_WM_WINDOW_TYPE_NORMAL":
		return SubroleStandard
	case "_NET_WM_WINDOW_TYPE_DIALOG":
		return SubroleDialog
	default:
		return SubroleUnknown
	}
}

func hasState(states []string, state string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func onDesktop(desktop, current int) bool {
	return desktop == current || desktop == -1
}
