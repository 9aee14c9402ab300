package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/perch/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// Status fetches the daemon status.
func (c *Client) Status() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Windows fetches the window list for one process.
func (c *Client) Windows(pid int) ([]WindowInfo, error) {
	payload, err := json.Marshal(WindowsPayload{PID: pid})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal windows payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandGetWindows, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return data.Windows, nil
}

// InvalidateCache drops the cached window list for pid; pid 0 drops all.
func (c *Client) InvalidateCache(pid int) error {
	payload, err := json.Marshal(InvalidatePayload{PID: pid})
	if err != nil {
		return fmt.Errorf("failed to marshal invalidate payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandInvalidateCache, Payload: payload})
	return err
}

// Reserved fetches the reserved area of every display.
func (c *Client) Reserved() ([]ReservedInfo, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetReserved})
	if err != nil {
		return nil, err
	}

	var data ReservedData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse reserved data: %w", err)
	}
	return data.Areas, nil
}

// TriggerScan requests an immediate overlap scan.
func (c *Client) TriggerScan() error {
	_, err := c.sendRequest(&Request{Command: CommandTriggerScan})
	return err
}
