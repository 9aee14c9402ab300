package ipc

import (
	"encoding/json"
	"testing"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"GET_WINDOWS","payload":{"pid":1234}}` + "\n"))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Command != CommandGetWindows {
		t.Fatalf("command = %s", req.Command)
	}

	var p WindowsPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.PID != 1234 {
		t.Fatalf("pid = %d", p.PID)
	}
}

func TestParseRequest_Malformed(t *testing.T) {
	if _, err := ParseRequest([]byte("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp, err := NewOKResponse(StatusData{BarPosition: "bottom", DaemonRunning: true})
	if err != nil {
		t.Fatalf("NewOKResponse: %v", err)
	}

	data, err := resp.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Status != "OK" {
		t.Fatalf("status = %s", decoded.Status)
	}

	var status StatusData
	if err := json.Unmarshal(decoded.Data, &status); err != nil {
		t.Fatalf("data: %v", err)
	}
	if status.BarPosition != "bottom" || !status.DaemonRunning {
		t.Fatalf("status = %+v", status)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("boom")
	if resp.Status != "ERROR" || resp.Error != "boom" {
		t.Fatalf("response = %+v", resp)
	}
}
