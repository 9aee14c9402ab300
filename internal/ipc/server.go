package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/perch/internal/overlap"
	"github.com/1broseidon/perch/internal/platform"
	"github.com/1broseidon/perch/internal/reserved"
	"github.com/1broseidon/perch/internal/runtimepath"
	"github.com/1broseidon/perch/internal/wincache"
)

// Server handles IPC requests from UI and CLI clients. It is the surface
// through which consumers pull cache-backed window lists, read reserved
// areas, and fire scan/reload hooks.
type Server struct {
	socketPath   string
	listener     net.Listener
	cache        *wincache.Cache
	engine       *overlap.Engine
	registry     *reserved.Registry
	gw           platform.Gateway
	barPosition  func() string
	reloadChan   chan struct{}
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. barPosition reports the current
// bar edge for status; reloadChan notifies the daemon of RELOAD requests.
func NewServer(cache *wincache.Cache, engine *overlap.Engine, registry *reserved.Registry, gw platform.Gateway, barPosition func() string, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		cache:       cache,
		engine:      engine,
		registry:    registry,
		gw:          gw,
		barPosition: barPosition,
		reloadChan:  reloadChan,
		startTime:   time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) sendError(conn net.Conn, msg string) {
	resp := NewErrorResponse(msg)
	if data, err := resp.Marshal(); err == nil {
		conn.Write(append(data, '\n'))
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetWindows:
		return s.handleGetWindows(req.Payload)
	case CommandInvalidateCache:
		return s.handleInvalidateCache(req.Payload)
	case CommandGetReserved:
		return s.handleGetReserved()
	case CommandTriggerScan:
		return s.handleTriggerScan()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload notifies the daemon to re-read configuration.
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	displayCount := 0
	if displays, err := s.gw.Displays(); err == nil {
		displayCount = len(displays)
	}

	status := StatusData{
		BarPosition:   s.barPosition(),
		DisplayCount:  displayCount,
		ReservedCount: len(s.registry.Areas()),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetWindows returns the cache-backed window list for one process.
func (s *Server) handleGetWindows(payload json.RawMessage) *Response {
	var p WindowsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid windows payload: %v", err))
	}
	if p.PID <= 0 {
		return NewErrorResponse("pid must be positive")
	}

	windows, err := s.cache.Get(context.Background(), p.PID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to enumerate windows: %v", err))
	}

	infos := make([]WindowInfo, len(windows))
	for i, w := range windows {
		infos[i] = WindowInfo{
			ID:         uint32(w.ID),
			PID:        w.PID,
			AppID:      w.AppID,
			Title:      w.Title,
			Role:       w.Role,
			Subrole:    w.Subrole,
			X:          w.Bounds.X,
			Y:          w.Bounds.Y,
			Width:      w.Bounds.Width,
			Height:     w.Bounds.Height,
			Level:      w.Level,
			Minimized:  w.Minimized,
			Fullscreen: w.Fullscreen,
			OnScreen:   w.OnScreen,
		}
	}

	resp, _ := NewOKResponse(WindowsData{Windows: infos})
	return resp
}

// handleInvalidateCache drops one or all cache entries.
func (s *Server) handleInvalidateCache(payload json.RawMessage) *Response {
	var p InvalidatePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid invalidate payload: %v", err))
		}
	}

	if p.PID > 0 {
		s.cache.Invalidate(p.PID)
	} else {
		s.cache.InvalidateAll()
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetReserved returns the reserved area of every display.
func (s *Server) handleGetReserved() *Response {
	areas := s.registry.Areas()

	infos := make([]ReservedInfo, len(areas))
	for i, a := range areas {
		infos[i] = ReservedInfo{
			DisplayID: a.DisplayID,
			Position:  string(a.Position),
			X:         a.Rect.X,
			Y:         a.Rect.Y,
			Width:     a.Rect.Width,
			Height:    a.Rect.Height,
		}
	}

	resp, _ := NewOKResponse(ReservedData{Areas: infos})
	return resp
}

// handleTriggerScan fires an overlap scan outside the periodic cadence.
func (s *Server) handleTriggerScan() *Response {
	s.engine.Trigger()
	resp, _ := NewOKResponse(nil)
	return resp
}
