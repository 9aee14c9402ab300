// Package topology watches for screen topology changes: displays added,
// removed, or resized. It prefers the compositor's MonitorsChanged D-Bus
// signal and degrades to polling the display list when the session bus or
// signal is unavailable.
package topology

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/perch/internal/platform"
)

// Mutter DisplayConfig D-Bus identifiers.
const (
	displayConfigPath      = "/org/gnome/Mutter/DisplayConfig"
	displayConfigInterface = "org.gnome.Mutter.DisplayConfig"
	monitorsChangedSignal  = displayConfigInterface + ".MonitorsChanged"
)

// DefaultPollInterval paces the fallback poll loop.
const DefaultPollInterval = 5 * time.Second

// Watcher emits a callback whenever screen topology changes.
type Watcher struct {
	gw       platform.Gateway
	interval time.Duration
	onChange func()
	logger   *slog.Logger
}

// NewWatcher creates a watcher calling onChange on every detected change.
func NewWatcher(gw platform.Gateway, interval time.Duration, onChange func(), logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		gw:       gw,
		interval: interval,
		onChange: onChange,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	if err := w.runDBus(ctx); err != nil {
		w.logger.Warn("display-config signal unavailable, polling instead", "error", err)
		w.runPoll(ctx)
	}
}

// runDBus subscribes to the compositor's MonitorsChanged signal. Returns
// an error only when the subscription cannot be established; once
// subscribed it runs until cancellation.
func (w *Watcher) runDBus(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(displayConfigPath),
		dbus.WithMatchInterface(displayConfigInterface),
		dbus.WithMatchMember("MonitorsChanged"),
	); err != nil {
		conn.Close()
		return fmt.Errorf("match MonitorsChanged: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	w.logger.Info("watching display topology via session bus")
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				// Bus dropped; fall back to polling for the remainder.
				w.logger.Warn("session bus signal stream closed, polling instead")
				w.runPoll(ctx)
				return nil
			}
			if sig.Name == monitorsChangedSignal {
				w.logger.Debug("monitors changed signal received")
				w.onChange()
			}
		}
	}
}

// runPoll compares display-list signatures on a fixed cadence.
func (w *Watcher) runPoll(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last string
	if displays, err := w.gw.Displays(); err == nil {
		last = Signature(displays)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			displays, err := w.gw.Displays()
			if err != nil {
				w.logger.Warn("display poll failed", "error", err)
				continue
			}
			sig := Signature(displays)
			if sig != last {
				w.logger.Info("display topology changed", "displays", len(displays))
				last = sig
				w.onChange()
			}
		}
	}
}

// Signature folds a display list into a comparable string. Order of the
// input does not matter.
func Signature(displays []platform.Display) string {
	parts := make([]string, 0, len(displays))
	for _, d := range displays {
		parts = append(parts, fmt.Sprintf("%d:%s:%d,%d,%dx%d",
			d.ID, d.Name, d.Bounds.X, d.Bounds.Y, d.Bounds.Width, d.Bounds.Height))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
