package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload          CommandType = "RELOAD"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetWindows      CommandType = "GET_WINDOWS"
	CommandInvalidateCache CommandType = "INVALIDATE_CACHE"
	CommandGetReserved     CommandType = "GET_RESERVED"
	CommandTriggerScan     CommandType = "TRIGGER_SCAN"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	BarPosition   string `json:"bar_position"`
	DisplayCount  int    `json:"display_count"`
	ReservedCount int    `json:"reserved_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// WindowsPayload selects the process whose windows are requested.
type WindowsPayload struct {
	PID int `json:"pid"`
}

// InvalidatePayload selects the cache entry to drop. PID 0 drops all.
type InvalidatePayload struct {
	PID int `json:"pid"`
}

// WindowInfo is the wire form of one window descriptor.
type WindowInfo struct {
	ID         uint32 `json:"id"`
	PID        int    `json:"pid"`
	AppID      string `json:"app_id"`
	Title      string `json:"title"`
	Role       string `json:"role"`
	Subrole    string `json:"subrole"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Level      int    `json:"level"`
	Minimized  bool   `json:"minimized"`
	Fullscreen bool   `json:"fullscreen"`
	OnScreen   bool   `json:"on_screen"`
}

// WindowsData represents the data returned by GET_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// ReservedInfo is the wire form of one reserved area.
type ReservedInfo struct {
	DisplayID int    `json:"display_id"`
	Position  string `json:"position"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ReservedData represents the data returned by GET_RESERVED
type ReservedData struct {
	Areas []ReservedInfo `json:"areas"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
