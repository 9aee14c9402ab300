// Package enumerate discovers the user-facing windows of a process by
// merging two data sources: the accessibility tree's per-process window
// list and the window server's flat on-screen list. A bounded probe over
// synthetic element indices recovers windows on inactive virtual desktops
// that the primary query misses.
package enumerate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/perch/internal/classify"
	"github.com/1broseidon/perch/internal/platform"
)

const (
	// DefaultProbeRange bounds the synthetic element index scan. The
	// value is inherited prior art, not derived; it is a tunable, not a
	// guarantee of completeness.
	DefaultProbeRange = 1000

	// DefaultWorkers caps parallel per-window attribute resolution.
	DefaultWorkers = 8
)

// Enumerator orchestrates gateway queries into per-process window lists.
type Enumerator struct {
	gw         platform.Gateway
	classifier *classify.Classifier
	probeRange int
	workers    int
	logger     *slog.Logger
}

// Config tunes an Enumerator. Zero values fall back to defaults.
type Config struct {
	ProbeRange int
	Workers    int
	Logger     *slog.Logger
}

// New creates an enumerator over the given gateway and classifier.
func New(gw platform.Gateway, classifier *classify.Classifier, cfg Config) *Enumerator {
	probeRange := cfg.ProbeRange
	if probeRange <= 0 {
		probeRange = DefaultProbeRange
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Enumerator{
		gw:         gw,
		classifier: classifier,
		probeRange: probeRange,
		workers:    workers,
		logger:     logger,
	}
}

// Enumerate returns the windows of pid that classify as user-facing.
// Order carries no meaning. A single window failing to resolve drops only
// that window; a missing window-server list degrades bounds accuracy but
// does not abort the pass.
func (e *Enumerator) Enumerate(ctx context.Context, pid int) ([]platform.Window, error) {
	if !e.gw.Permitted() {
		return nil, fmt.Errorf("window service access denied")
	}

	handles, err := e.gw.AppWindows(pid)
	if err != nil {
		return nil, fmt.Errorf("accessibility windows for pid %d: %w", pid, err)
	}

	// Recover off-desktop windows the primary query does not report.
	// Best-effort by construction: the probe range is a fixed search
	// space, not a complete enumeration.
	seen := make(map[platform.WindowID]bool, len(handles))
	for _, h := range handles {
		seen[h.ID] = true
	}
	for i := 0; i < e.probeRange; i++ {
		h, ok := e.gw.ProbeWindow(pid, i)
		if !ok {
			continue
		}
		if h.Subrole != platform.SubroleStandard && h.Subrole != platform.SubroleDialog {
			continue
		}
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		handles = append(handles, h)
	}

	// One flat window-server query serves the whole pass.
	server := make(map[platform.WindowID]platform.ServerWindow)
	if list, err := e.gw.ListWindows(); err != nil {
		e.logger.Warn("window-server list unavailable, using accessibility bounds",
			"pid", pid, "error", err)
	} else {
		for _, sw := range list {
			if sw.PID == pid {
				server[sw.ID] = sw
			}
		}
	}

	var (
		mu      sync.Mutex
		windows []platform.Window
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, h := range handles {
		h := h
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			w, err := e.gw.ResolveWindow(pid, h)
			if err != nil {
				// Drop this window only; the batch continues.
				e.logger.Debug("window attribute resolution failed",
					"pid", pid, "window", h.ID, "error", err)
				return nil
			}

			// Window-server data is authoritative where present.
			if sw, ok := server[w.ID]; ok {
				w.Bounds = sw.Bounds
				w.Level = sw.Layer
				w.OnScreen = sw.OnScreen
			}

			if v := e.classifier.Classify(w, w.AppID); !v.Include {
				e.logger.Debug("window excluded",
					"pid", pid, "window", w.ID, "rule", v.Rule)
				return nil
			}

			mu.Lock()
			windows = append(windows, w)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return windows, nil
}
