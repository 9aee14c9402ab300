package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/1broseidon/perch/internal/classify"
	"github.com/1broseidon/perch/internal/config"
	"github.com/1broseidon/perch/internal/enumerate"
	"github.com/1broseidon/perch/internal/ipc"
	"github.com/1broseidon/perch/internal/overlap"
	"github.com/1broseidon/perch/internal/platform"
	"github.com/1broseidon/perch/internal/reserved"
	"github.com/1broseidon/perch/internal/topology"
	"github.com/1broseidon/perch/internal/wincache"
)

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("configuration loaded",
		"bar_position", cfg.BarPosition, "icon_size", cfg.IconSize)

	// Connect to display server
	gw, err := platform.NewX11GatewayFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer gw.Disconnect()

	// Classification, enumeration, cache
	var allowlist []string
	if len(cfg.FloatingAllowlist) > 0 {
		allowlist = cfg.FloatingAllowlist
	}
	classifier := classify.New(nil, allowlist)

	enumerator := enumerate.New(gw, classifier, enumerate.Config{
		ProbeRange: cfg.ProbeRange,
		Workers:    cfg.Workers,
		Logger:     logger,
	})
	cache := wincache.New(cfg.CacheTTL(), enumerator.Enumerate)

	// Reserved areas per display
	registry := reserved.NewRegistry()
	if displays, err := gw.Displays(); err != nil {
		logger.Warn("initial display query failed", "error", err)
	} else {
		registry.Update(displays, cfg.Reserved())
	}

	// Overlap engine
	engine := overlap.NewEngine(gw, registry, os.Getpid(), cfg.Overlap(), logger)

	// Shared current config for reloads
	var cfgMu sync.RWMutex
	currentCfg := cfg

	refreshAreas := func() {
		displays, err := gw.Displays()
		if err != nil {
			logger.Warn("display query failed", "error", err)
			return
		}
		cfgMu.RLock()
		rc := currentCfg.Reserved()
		cfgMu.RUnlock()
		registry.Update(displays, rc)
	}

	// Topology watcher: displays added/removed/resized re-derive the
	// reserved areas and force a scan.
	watcher := topology.NewWatcher(gw, 0, func() {
		refreshAreas()
		cache.InvalidateAll()
		engine.Trigger()
	}, logger)

	// IPC server
	reloadChan := make(chan struct{}, 1)
	barPosition := func() string {
		cfgMu.RLock()
		defer cfgMu.RUnlock()
		return currentCfg.BarPosition
	}
	server, err := ipc.NewServer(cache, engine, registry, gw, barPosition, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer server.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go watcher.Run(ctx)
	go engine.Run(ctx)

	logger.Info("perch daemon started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("perch daemon stopping")
			return
		case <-reloadChan:
			newCfg, err := config.Load()
			if err != nil {
				logger.Error("config reload failed, keeping previous", "error", err)
				continue
			}
			cfgMu.Lock()
			currentCfg = newCfg
			cfgMu.Unlock()

			// Geometry settings apply immediately; scan cadence changes
			// take effect on restart.
			refreshAreas()
			cache.InvalidateAll()
			engine.Trigger()
			logger.Info("configuration reloaded", "bar_position", newCfg.BarPosition)
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
